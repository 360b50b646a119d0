package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/pkg/grpccodec"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeUseCase struct {
	lastQuery  *dto.QueryInput
	lastGroups *dto.GroupsInput
	rows       []dto.CatalogRow
	err        error
}

func (f *fakeUseCase) Query(_ context.Context, in *dto.QueryInput) ([]dto.CatalogRow, error) {
	f.lastQuery = in
	return f.rows, f.err
}

func (f *fakeUseCase) VariantsOf(context.Context, *dto.VariantsInput) (*dto.VariantsResult, error) {
	return &dto.VariantsResult{Items: f.rows, AttributesMeta: map[string][]string{}}, f.err
}

func (f *fakeUseCase) ItemGroups(_ context.Context, in *dto.GroupsInput) ([]dto.ItemGroup, error) {
	f.lastGroups = in
	return []dto.ItemGroup{{Name: "Drinks"}, {Name: "Food"}}, f.err
}

func (f *fakeUseCase) DetailOf(_ context.Context, in *dto.DetailInput) (*dto.ItemDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrItemNotFound, in.Item.ItemCode)
}

func (f *fakeUseCase) ResolveByBarcode(_ context.Context, in *dto.BarcodeInput) (*dto.BarcodeHit, error) {
	if in.Barcode == "" {
		return nil, catalog.ErrInvalidInput
	}
	if in.Barcode == "8991001" {
		return &dto.BarcodeHit{ItemCode: "B200", Barcode: in.Barcode, Currency: in.Currency}, nil
	}
	return nil, nil
}

func (f *fakeUseCase) SearchIdentifier(context.Context, *dto.IdentifierInput) (*dto.IdentifierHit, error) {
	return nil, nil
}

func newRouter(uc catalog.UseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHTTPHandler(uc, logger.NewNop()).Register(r.Group("/api/v1"))
	return r
}

func TestHTTPQuery(t *testing.T) {
	uc := &fakeUseCase{rows: []dto.CatalogRow{{ItemCode: "A100"}}}
	r := newRouter(uc)

	body := `{"price_list":"Retail","limit":"25","offset":-2,"pos_profile":{"warehouse":"WH1"}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/items", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d %s", w.Code, w.Body)
	}
	var out dto.QueryOutput
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || len(out.Items) != 1 || out.Items[0].ItemCode != "A100" {
		t.Fatalf("body: %s", w.Body)
	}
	in := uc.lastQuery
	if !in.Limit.Set || in.Limit.Value != 25 || in.Offset.Set || in.Profile.Warehouse != "WH1" {
		t.Errorf("decoded input: %+v", in)
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	r := newRouter(&fakeUseCase{})

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/v1/catalog/items", `{not json`, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/catalog/detail", `{"item":{"item_code":"NOPE"}}`, http.StatusNotFound},
		{http.MethodGet, "/api/v1/catalog/barcode/8991001?currency=USD", "", http.StatusOK},
		{http.MethodGet, "/api/v1/catalog/barcode/000", "", http.StatusOK},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
		if w.Code != tt.want {
			t.Errorf("%s %s: got %d, want %d (%s)", tt.method, tt.path, w.Code, tt.want, w.Body)
		}
	}

	r = newRouter(&fakeUseCase{err: fmt.Errorf("boom")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/detail", strings.NewReader(`{}`)))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("unexpected error: got %d", w.Code)
	}
}

func TestHTTPBarcodeBody(t *testing.T) {
	r := newRouter(&fakeUseCase{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/barcode/8991001?currency=USD", nil))
	var out dto.BarcodeOutput
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || !out.Found || out.Item.ItemCode != "B200" || out.Item.Currency != "USD" {
		t.Fatalf("body: %s", w.Body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/barcode/000", nil))
	out = dto.BarcodeOutput{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.Found || out.Item != nil {
		t.Fatalf("miss body: %s", w.Body)
	}
}

func TestHTTPItemGroups(t *testing.T) {
	uc := &fakeUseCase{}
	r := newRouter(uc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/groups?pos_profile=Main&item_group=Drinks&item_group=Food", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d %s", w.Code, w.Body)
	}
	var out dto.GroupsOutput
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || len(out.Groups) != 2 {
		t.Fatalf("body: %s", w.Body)
	}
	in := uc.lastGroups
	if in.Profile.Name != "Main" || len(in.Profile.ItemGroups) != 2 || in.Profile.ItemGroups[1] != "Food" {
		t.Errorf("decoded input: %+v", in)
	}
}

func dialCatalog(t *testing.T, uc catalog.UseCase) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCatalogServiceServer(srv, NewCatalogHandler(uc, logger.NewNop()))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCQueryAndErrors(t *testing.T) {
	conn := dialCatalog(t, &fakeUseCase{rows: []dto.CatalogRow{{ItemCode: "A100"}, {ItemCode: "B200"}}})
	ctx := context.Background()

	var out dto.QueryOutput
	if err := grpccodec.Invoke(ctx, conn, "/"+ServiceName+"/Query", &dto.QueryInput{PriceList: "Retail"}, &out); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out.Items) != 2 {
		t.Errorf("items: got %+v", out.Items)
	}

	var groups dto.GroupsOutput
	if err := grpccodec.Invoke(ctx, conn, "/"+ServiceName+"/ItemGroups", &dto.GroupsInput{}, &groups); err != nil {
		t.Fatalf("ItemGroups: %v", err)
	}
	if len(groups.Groups) != 2 || groups.Groups[0].Name != "Drinks" {
		t.Errorf("groups: got %+v", groups.Groups)
	}

	var detail dto.ItemDetail
	err := grpccodec.Invoke(ctx, conn, "/"+ServiceName+"/DetailOf", &dto.DetailInput{Item: dto.DetailItem{ItemCode: "NOPE"}}, &detail)
	if status.Code(err) != codes.NotFound {
		t.Errorf("DetailOf: got %v", err)
	}

	var hit dto.BarcodeOutput
	err = grpccodec.Invoke(ctx, conn, "/"+ServiceName+"/ResolveByBarcode", &dto.BarcodeInput{}, &hit)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("ResolveByBarcode: got %v", err)
	}
}
