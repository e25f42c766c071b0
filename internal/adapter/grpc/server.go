package grpc

import (
	"context"
	"errors"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/history"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AllocationComputer runs one allocation cycle
type AllocationComputer interface {
	ComputeAndRecord(ctx context.Context) (domain.Report, error)
}

// HistoryFetcher reads snapshot history
type HistoryFetcher interface {
	Fetch(ctx context.Context, level, from, to string) (*history.Result, error)
}

// WalletImporter imports a ledger CSV from disk
type WalletImporter interface {
	ImportFile(ctx context.Context, path string) (int, error)
}

// Server implements the AllocationService gRPC server
type Server struct {
	AllocationService AllocationComputer
	HistoryService    HistoryFetcher
	LedgerService     WalletImporter
}

var _ AllocationServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	allocationService AllocationComputer,
	historyService HistoryFetcher,
	ledgerService WalletImporter,
) *Server {
	return &Server{
		AllocationService: allocationService,
		HistoryService:    historyService,
		LedgerService:     ledgerService,
	}
}

// Compute handles the Compute RPC
func (s *Server) Compute(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	report, err := s.AllocationService.ComputeAndRecord(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	out, err := toStruct(report)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode report: %v", err)
	}
	return out, nil
}

// History handles the History RPC
func (s *Server) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	level := stringField(req, "level")
	if level == "" {
		level = string(domain.LevelTotals)
	}

	res, err := s.HistoryService.Fetch(ctx, level, stringField(req, "from"), stringField(req, "to"))
	if err != nil {
		return nil, mapError(err)
	}

	out, err := toStruct(map[string]any{
		"level": res.Level,
		"rows":  res.Rows(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode history: %v", err)
	}
	return out, nil
}

// ImportWallets handles the ImportWallets RPC
func (s *Server) ImportWallets(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	n, err := s.LedgerService.ImportFile(ctx, req.GetValue())
	if err != nil {
		return nil, mapError(err)
	}
	return wrapperspb.Int64(int64(n)), nil
}

func stringField(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[name].GetStringValue()
}

// toStruct converts v to a Struct through its JSON form so that field names
// match the HTTP API
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConfiguration):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	case domain.IsUpstream(err):
		return status.Errorf(codes.Unavailable, "%s", errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
