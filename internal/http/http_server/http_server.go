package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files

	"auctionhouse/internal/http/auctionhandler"
	"auctionhouse/internal/http/authmw"
	"auctionhouse/internal/http/userhandler"
	"auctionhouse/internal/services/auction"
	"auctionhouse/internal/services/user"
)

type httpServer struct {
	listenPort     uint16
	srv            http.Server
	ln             net.Listener
	auctionService auction.IAuctionService
	userService    user.IUserService
}

func NewHttpServer(listenPort uint16, auctionService auction.IAuctionService, userService user.IUserService) *httpServer {
	return &httpServer{
		listenPort:     listenPort,
		auctionService: auctionService,
		userService:    userService,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	requireAuth := authmw.RequireAuth(h.userService)
	requireAdmin := authmw.RequireAdmin()

	api := routerEngine.Group("/api")

	uh := userhandler.New(h.userService)
	uh.Register(api.Group("/users"))

	ah := auctionhandler.New(h.auctionService)
	ah.Register(api.Group("/auctions"), requireAuth, requireAdmin)

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn't finish in time
	}

	if ctx.Err() == context.DeadlineExceeded {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
	}

	return nil
}
