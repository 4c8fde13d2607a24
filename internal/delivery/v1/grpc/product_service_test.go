package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/cfg"
	"github.com/DRSN-tech/product-catalog/internal/domain"
	"github.com/DRSN-tech/product-catalog/internal/repository/memory"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startTestServer(t *testing.T) (*ProductServiceClient, healthpb.HealthClient) {
	t.Helper()

	uc := usecase.NewProductUC(memory.NewProductRepo(), memory.NewOutboxRepo(), memory.NewTxManager(), logger.NewNopLogger())
	return startServerWith(t, uc)
}

func startServerWith(t *testing.T, uc usecase.ProductUC) (*ProductServiceClient, healthpb.HealthClient) {
	t.Helper()

	srv := NewGRPCServer(&cfg.GRPCConfig{NetworkMode: "tcp", Reflection: true}, logger.NewNopLogger())
	srv.RegisterServices(uc)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	return NewProductServiceClient(conn), healthpb.NewHealthClient(conn)
}

// panickingUC падает на GetProduct, остальные методы не вызываются.
type panickingUC struct {
	usecase.ProductUC
}

func (panickingUC) GetProduct(context.Context, int64) (*domain.Product, error) {
	panic("boom")
}

func TestProductService_PanicIsInternal(t *testing.T) {
	client, health := startServerWith(t, panickingUC{})
	ctx := context.Background()

	_, err := client.GetProduct(ctx, &GetProductRequest{Id: 1})
	if got := status.Code(err); got != codes.Internal {
		t.Fatalf("GetProduct() code = %v, want %v (err %v)", got, codes.Internal, err)
	}

	// сервер продолжает обслуживать запросы после паники
	_, err = client.GetProduct(ctx, &GetProductRequest{Id: 2})
	if got := status.Code(err); got != codes.Internal {
		t.Fatalf("second GetProduct() code = %v, want %v", got, codes.Internal)
	}

	res, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil || res.Status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("health after panic = %v, %v", res, err)
	}
}

func TestProductService_RoundTrip(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	created, err := client.CreateProduct(ctx, &CreateProductRequest{Category: "tools", Name: "hammer"})
	if err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}
	if created.Id == 0 || created.Name != "hammer" {
		t.Fatalf("created = %+v", created)
	}

	got, err := client.GetProduct(ctx, &GetProductRequest{Id: created.Id})
	if err != nil || *got != *created {
		t.Fatalf("GetProduct() = %+v, %v", got, err)
	}

	updated, err := client.UpdateProduct(ctx, &UpdateProductRequest{Id: created.Id, Category: "garden", Name: "rake"})
	if err != nil || updated.Category != "garden" || updated.Name != "rake" {
		t.Fatalf("UpdateProduct() = %+v, %v", updated, err)
	}

	list, err := client.ListProductsByCategory(ctx, &ListProductsByCategoryRequest{Category: "garden", Page: 0, Size: 10})
	if err != nil || len(list.Items) != 1 || list.TotalElements != 1 || list.TotalPages != 1 {
		t.Fatalf("ListProductsByCategory() = %+v, %v", list, err)
	}

	cats, err := client.ListCategories(ctx, &ListCategoriesRequest{})
	if err != nil || len(cats.Categories) != 1 || cats.Categories[0] != "garden" {
		t.Fatalf("ListCategories() = %+v, %v", cats, err)
	}

	if _, err := client.DeleteProduct(ctx, &DeleteProductRequest{Id: created.Id}); err != nil {
		t.Fatalf("DeleteProduct() error = %v", err)
	}
	if _, err := client.DeleteProduct(ctx, &DeleteProductRequest{Id: created.Id}); status.Code(err) != codes.NotFound {
		t.Fatalf("second DeleteProduct() code = %v, want NotFound", status.Code(err))
	}
}

func TestProductService_ErrorCodes(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	_, err := client.CreateProduct(ctx, &CreateProductRequest{Category: "tools"})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("CreateProduct without name code = %v, want InvalidArgument", status.Code(err))
	}

	_, err = client.GetProduct(ctx, &GetProductRequest{Id: 12345})
	if status.Code(err) != codes.NotFound {
		t.Errorf("GetProduct missing code = %v, want NotFound", status.Code(err))
	}

	_, err = client.ListProductsByCategory(ctx, &ListProductsByCategoryRequest{Category: "tools", Size: 0})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("ListProductsByCategory size 0 code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestProductService_Health(t *testing.T) {
	_, health := startTestServer(t)

	res, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatal(err)
	}
	if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", res.GetStatus())
	}
}

func TestGRPCErrorResponse(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
		msg  string
	}{
		{err: e.Wrap("op", e.ErrProductNotFound), want: codes.NotFound, msg: e.ErrProductNotFound.Error()},
		{err: e.Wrap("op", e.ErrInvalidPageSize), want: codes.InvalidArgument, msg: e.ErrInvalidPageSize.Error()},
		{err: e.StoreFailure("op", errors.New("timeout")), want: codes.Internal, msg: e.ErrInternalServerError.Error()},
	}

	for _, tt := range tests {
		st, _ := status.FromError(GRPCErrorResponse(tt.err))
		if st.Code() != tt.want || st.Message() != tt.msg {
			t.Errorf("GRPCErrorResponse(%v) = %v %q, want %v %q", tt.err, st.Code(), st.Message(), tt.want, tt.msg)
		}
	}
}
