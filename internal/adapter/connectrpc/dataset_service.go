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

const DatasetServiceName = "wordgym.v1.DatasetService"

const (
	DatasetServiceImportRowsProcedure = "/wordgym.v1.DatasetService/ImportRows"
	DatasetServiceImportTextProcedure = "/wordgym.v1.DatasetService/ImportText"
	DatasetServiceRefreshProcedure    = "/wordgym.v1.DatasetService/Refresh"
	DatasetServiceListWordsProcedure  = "/wordgym.v1.DatasetService/ListWords"
	DatasetServiceGetWordProcedure    = "/wordgym.v1.DatasetService/GetWord"
	DatasetServiceResetProcedure      = "/wordgym.v1.DatasetService/Reset"
)

type DatasetServiceServer struct {
	uc usecase.DatasetUsecase
}

func NewDatasetServiceServer(uc usecase.DatasetUsecase) *DatasetServiceServer {
	return &DatasetServiceServer{uc: uc}
}

// NewDatasetServiceHandler returns the mount path and handler for the dataset procedures.
func NewDatasetServiceHandler(svc *DatasetServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	readOnly := append([]connect.HandlerOption{connect.WithIdempotency(connect.IdempotencyNoSideEffects)}, opts...)
	return "/" + DatasetServiceName + "/", procedures{
		DatasetServiceImportRowsProcedure: connect.NewUnaryHandler(DatasetServiceImportRowsProcedure, svc.ImportRows, opts...),
		DatasetServiceImportTextProcedure: connect.NewUnaryHandler(DatasetServiceImportTextProcedure, svc.ImportText, opts...),
		DatasetServiceRefreshProcedure:    connect.NewUnaryHandler(DatasetServiceRefreshProcedure, svc.Refresh, opts...),
		DatasetServiceListWordsProcedure:  connect.NewUnaryHandler(DatasetServiceListWordsProcedure, svc.ListWords, readOnly...),
		DatasetServiceGetWordProcedure:    connect.NewUnaryHandler(DatasetServiceGetWordProcedure, svc.GetWord, readOnly...),
		DatasetServiceResetProcedure:      connect.NewUnaryHandler(DatasetServiceResetProcedure, svc.Reset, opts...),
	}
}

func (s *DatasetServiceServer) ImportRows(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in mapping.ImportRequest
	if err := mapping.Decode(req.Msg, &in); err != nil {
		return nil, err
	}
	res, err := s.uc.ImportRows(ctx, in.Rows, in.Options())
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return importResponse(res)
}

func (s *DatasetServiceServer) ImportText(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in mapping.ImportRequest
	if err := mapping.Decode(req.Msg, &in); err != nil {
		return nil, err
	}
	res, err := s.uc.ImportText(ctx, in.Text, in.Options())
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return importResponse(res)
}

// Refresh pulls the configured sheet and merges it into the dataset.
func (s *DatasetServiceServer) Refresh(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in mapping.ImportRequest
	if err := mapping.Decode(req.Msg, &in); err != nil {
		return nil, err
	}
	res, err := s.uc.Refresh(ctx, in.ForceRefresh, in.Options())
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return importResponse(res)
}

func importResponse(res *usecase.ImportResult) (*connect.Response[structpb.Struct], error) {
	out, err := mapping.ToImportResult(res)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

func (s *DatasetServiceServer) ListWords(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in mapping.ListRequest
	if err := mapping.Decode(req.Msg, &in); err != nil {
		return nil, err
	}
	page, err := convertPagination(in.Pagination)
	if err != nil {
		return nil, err
	}
	query := &repository.ListWordQuery{
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

func (s *DatasetServiceServer) GetWord(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in mapping.IDRequest
	if err := mapping.Decode(req.Msg, &in); err != nil {
		return nil, err
	}
	word, err := s.uc.Get(ctx, in.ID)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	out, err := mapping.ToWord(word)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

// Reset empties the dataset and restarts id allocation.
func (s *DatasetServiceServer) Reset(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	if err := s.uc.Reset(ctx); err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}
