package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/pkg/grpccodec"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "omnipos.catalog.v1.CatalogService"

type CatalogServiceServer interface {
	Query(ctx context.Context, req *dto.QueryInput) (*dto.QueryOutput, error)
	VariantsOf(ctx context.Context, req *dto.VariantsInput) (*dto.VariantsResult, error)
	ItemGroups(ctx context.Context, req *dto.GroupsInput) (*dto.GroupsOutput, error)
	DetailOf(ctx context.Context, req *dto.DetailInput) (*dto.ItemDetail, error)
	ResolveByBarcode(ctx context.Context, req *dto.BarcodeInput) (*dto.BarcodeOutput, error)
	SearchIdentifier(ctx context.Context, req *dto.IdentifierInput) (*dto.IdentifierOutput, error)
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpccodec.Unary(ServiceName, "Query", CatalogServiceServer.Query),
		grpccodec.Unary(ServiceName, "VariantsOf", CatalogServiceServer.VariantsOf),
		grpccodec.Unary(ServiceName, "ItemGroups", CatalogServiceServer.ItemGroups),
		grpccodec.Unary(ServiceName, "DetailOf", CatalogServiceServer.DetailOf),
		grpccodec.Unary(ServiceName, "ResolveByBarcode", CatalogServiceServer.ResolveByBarcode),
		grpccodec.Unary(ServiceName, "SearchIdentifier", CatalogServiceServer.SearchIdentifier),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/catalog/v1/catalog.proto",
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CatalogHandler) Query(ctx context.Context, req *dto.QueryInput) (*dto.QueryOutput, error) {
	rows, err := h.uc.Query(ctx, req)
	if err != nil {
		return nil, h.status("query", err)
	}
	return &dto.QueryOutput{Items: rows}, nil
}

func (h *CatalogHandler) VariantsOf(ctx context.Context, req *dto.VariantsInput) (*dto.VariantsResult, error) {
	res, err := h.uc.VariantsOf(ctx, req)
	if err != nil {
		return nil, h.status("variants", err)
	}
	return res, nil
}

func (h *CatalogHandler) ItemGroups(ctx context.Context, req *dto.GroupsInput) (*dto.GroupsOutput, error) {
	groups, err := h.uc.ItemGroups(ctx, req)
	if err != nil {
		return nil, h.status("groups", err)
	}
	return &dto.GroupsOutput{Groups: groups}, nil
}

func (h *CatalogHandler) DetailOf(ctx context.Context, req *dto.DetailInput) (*dto.ItemDetail, error) {
	d, err := h.uc.DetailOf(ctx, req)
	if err != nil {
		return nil, h.status("detail", err)
	}
	return d, nil
}

func (h *CatalogHandler) ResolveByBarcode(ctx context.Context, req *dto.BarcodeInput) (*dto.BarcodeOutput, error) {
	hit, err := h.uc.ResolveByBarcode(ctx, req)
	if err != nil {
		return nil, h.status("barcode", err)
	}
	return &dto.BarcodeOutput{Found: hit != nil, Item: hit}, nil
}

func (h *CatalogHandler) SearchIdentifier(ctx context.Context, req *dto.IdentifierInput) (*dto.IdentifierOutput, error) {
	hit, err := h.uc.SearchIdentifier(ctx, req)
	if err != nil {
		return nil, h.status("identifier", err)
	}
	return &dto.IdentifierOutput{Found: hit != nil, Hit: hit}, nil
}

func (h *CatalogHandler) status(op string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, catalog.ErrItemNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		h.logger.Error("catalog request failed", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}
