package connectrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/eslsoft/wordgym/internal/adapter/mapping"
	"github.com/eslsoft/wordgym/internal/repository"
	"github.com/eslsoft/wordgym/internal/usecase"
)

const (
	FavoriteServiceName = "wordgym.v1.FavoriteService"
	QuizServiceName     = "wordgym.v1.QuizService"
)

const (
	FavoriteServiceAddFavoriteProcedure    = "/wordgym.v1.FavoriteService/AddFavorite"
	FavoriteServiceRemoveFavoriteProcedure = "/wordgym.v1.FavoriteService/RemoveFavorite"
	FavoriteServiceListFavoritesProcedure  = "/wordgym.v1.FavoriteService/ListFavorites"

	QuizServiceRecordQuizProcedure      = "/wordgym.v1.QuizService/RecordQuiz"
	QuizServiceListQuizHistoryProcedure = "/wordgym.v1.QuizService/ListQuizHistory"
)

type FavoriteServiceServer struct {
	uc usecase.FavoriteUsecase
}

func NewFavoriteServiceServer(uc usecase.FavoriteUsecase) *FavoriteServiceServer {
	return &FavoriteServiceServer{uc: uc}
}

func NewFavoriteServiceHandler(svc *FavoriteServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + FavoriteServiceName + "/", procedures{
		FavoriteServiceAddFavoriteProcedure:    connect.NewUnaryHandler(FavoriteServiceAddFavoriteProcedure, svc.AddFavorite, opts...),
		FavoriteServiceRemoveFavoriteProcedure: connect.NewUnaryHandler(FavoriteServiceRemoveFavoriteProcedure, svc.RemoveFavorite, opts...),
		FavoriteServiceListFavoritesProcedure:  connect.NewUnaryHandler(FavoriteServiceListFavoritesProcedure, svc.ListFavorites, opts...),
	}
}

func (s *FavoriteServiceServer) AddFavorite(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in mapping.FavoriteRequest
	if err := mapping.Decode(req.Msg, &in); err != nil {
		return nil, err
	}
	fav, err := s.uc.Add(ctx, in.WordID)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	out, err := mapping.ToFavorite(fav)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

func (s *FavoriteServiceServer) RemoveFavorite(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[emptypb.Empty], error) {
	var in mapping.FavoriteRequest
	if err := mapping.Decode(req.Msg, &in); err != nil {
		return nil, err
	}
	if err := s.uc.Remove(ctx, in.WordID); err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *FavoriteServiceServer) ListFavorites(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	items, err := s.uc.List(ctx)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	out, err := mapping.ToList(items, 1, int32(len(items)), int64(len(items)))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

type QuizServiceServer struct {
	uc usecase.QuizUsecase
}

func NewQuizServiceServer(uc usecase.QuizUsecase) *QuizServiceServer {
	return &QuizServiceServer{uc: uc}
}

func NewQuizServiceHandler(svc *QuizServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + QuizServiceName + "/", procedures{
		QuizServiceRecordQuizProcedure:      connect.NewUnaryHandler(QuizServiceRecordQuizProcedure, svc.RecordQuiz, opts...),
		QuizServiceListQuizHistoryProcedure: connect.NewUnaryHandler(QuizServiceListQuizHistoryProcedure, svc.ListQuizHistory, opts...),
	}
}

// RecordQuiz stores a finished quiz. The server assigns the id and, when missing, the timestamp.
func (s *QuizServiceServer) RecordQuiz(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	rec, err := mapping.FromQuizStruct(req.Msg)
	if err != nil {
		return nil, err
	}
	saved, err := s.uc.Record(ctx, rec)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	out, err := mapping.ToQuizRecord(saved)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

func (s *QuizServiceServer) ListQuizHistory(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in mapping.ListRequest
	if err := mapping.Decode(req.Msg, &in); err != nil {
		return nil, err
	}
	page, err := convertPagination(in.Pagination)
	if err != nil {
		return nil, err
	}
	query := &repository.ListQuizRecordQuery{
		Pagination: page,
		FilterOrder: repository.FilterOrder{
			Filter:  in.Filter,
			OrderBy: in.OrderBy,
		},
	}
	items, total, err := s.uc.List(ctx, query)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	out, err := mapping.ToList(items, page.PageNo, page.PageSize, total)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}
