package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/delta"
	"github.com/fekuna/omnipos-catalog-service/internal/delta/dto"
	"github.com/fekuna/omnipos-catalog-service/pkg/grpccodec"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "omnipos.catalog.v1.SyncService"

type SyncServiceServer interface {
	CheckChanges(ctx context.Context, req *dto.ChangesInput) (*dto.ChangeSummary, error)
	FetchByIdentifiers(ctx context.Context, req *dto.FetchInput) (*dto.FetchOutput, error)
	RecentCustomers(ctx context.Context, req *dto.CustomersInput) (*dto.CustomersOutput, error)
}

var SyncServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpccodec.Unary(ServiceName, "CheckChanges", SyncServiceServer.CheckChanges),
		grpccodec.Unary(ServiceName, "FetchByIdentifiers", SyncServiceServer.FetchByIdentifiers),
		grpccodec.Unary(ServiceName, "RecentCustomers", SyncServiceServer.RecentCustomers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/catalog/v1/sync.proto",
}

func RegisterSyncServiceServer(s grpc.ServiceRegistrar, srv SyncServiceServer) {
	s.RegisterService(&SyncServiceDesc, srv)
}

type SyncHandler struct {
	uc     delta.UseCase
	logger logger.ZapLogger
}

func NewSyncHandler(uc delta.UseCase, log logger.ZapLogger) *SyncHandler {
	return &SyncHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SyncHandler) CheckChanges(ctx context.Context, req *dto.ChangesInput) (*dto.ChangeSummary, error) {
	out, err := h.uc.CheckChanges(ctx, req)
	if err != nil {
		return nil, h.status("check_changes", err)
	}
	return out, nil
}

func (h *SyncHandler) FetchByIdentifiers(ctx context.Context, req *dto.FetchInput) (*dto.FetchOutput, error) {
	out, err := h.uc.FetchByIdentifiers(ctx, req)
	if err != nil {
		return nil, h.status("fetch_items", err)
	}
	return out, nil
}

func (h *SyncHandler) RecentCustomers(ctx context.Context, req *dto.CustomersInput) (*dto.CustomersOutput, error) {
	out, err := h.uc.RecentCustomers(ctx, req)
	if err != nil {
		return nil, h.status("recent_customers", err)
	}
	return out, nil
}

func (h *SyncHandler) status(op string, err error) error {
	if errors.Is(err, delta.ErrInvalidInput) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	h.logger.Error("sync request failed", zap.String("op", op), zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
