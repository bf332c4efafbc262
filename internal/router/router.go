package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/giftledger/internal/authz"
	"github.com/giftledger/internal/cache"
	"github.com/giftledger/internal/config"
	adminhandlers "github.com/giftledger/internal/http/handlers/admin"
	publichandlers "github.com/giftledger/internal/http/handlers/public"
	"github.com/giftledger/internal/http/response"
	"github.com/giftledger/internal/logger"
	"github.com/giftledger/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.Z()
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "gl"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	applyRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:gift_card_apply", redisPrefix),
		WindowSeconds: cfg.Security.ApplyRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ApplyRateLimit.MaxAttempts,
		MessageKey:    "error.apply_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
			public.GET("/gift-card-variants", publicHandler.GetGiftCardVariants)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/me/gift-cards", publicHandler.GetMyGiftCards)
			user.GET("/me/gift-cards/:id", publicHandler.GetMyGiftCard)
			user.POST("/me/gift-cards/:id/transfer", publicHandler.TransferMyGiftCard)
			user.POST("/orders", publicHandler.CreateMyOrder)
			user.GET("/orders/:order_no", publicHandler.GetMyOrder)
			user.POST("/orders/:order_no/gift-cards",
				RateLimitMiddleware(redisClient, applyRule, KeyByIP),
				publicHandler.ApplyGiftCardToOrder)
			user.DELETE("/orders/:order_no/gift-cards/:id", publicHandler.RemoveMyOrderGiftCard)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.PUT("/authz/admins/:id", adminHandler.UpdateAuthzAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)

				// 礼品卡管理
				authorized.POST("/gift-cards", adminHandler.IssueGiftCard)
				authorized.GET("/gift-cards", adminHandler.GetGiftCards)
				authorized.GET("/gift-cards/:id", adminHandler.GetGiftCard)
				authorized.PUT("/gift-cards/:id", adminHandler.UpdateGiftCard)
				authorized.DELETE("/gift-cards/:id", adminHandler.DeleteGiftCard)
				authorized.POST("/gift-cards/:id/void", adminHandler.VoidGiftCard)
				authorized.POST("/gift-cards/:id/restore", adminHandler.RestoreGiftCard)
				authorized.POST("/gift-cards/:id/debit", adminHandler.DebitGiftCard)
				authorized.POST("/gift-cards/:id/transfer", adminHandler.TransferGiftCard)
				authorized.GET("/gift-cards/:id/transfers", adminHandler.GetGiftCardTransfers)
				authorized.GET("/gift-cards/:id/adjustments", adminHandler.GetGiftCardAdjustments)

				// 商品规格管理
				authorized.POST("/variants", adminHandler.CreateVariant)
				authorized.GET("/variants", adminHandler.GetVariants)
				authorized.GET("/variants/:id", adminHandler.GetVariant)
				authorized.PUT("/variants/:id", adminHandler.UpdateVariant)
				authorized.DELETE("/variants/:id", adminHandler.DeleteVariant)

				// 订单管理
				authorized.GET("/orders/:order_no", adminHandler.AdminGetOrder)
				authorized.GET("/orders/:order_no/adjustments", adminHandler.AdminOrderAdjustments)
				authorized.POST("/orders/:order_no/advance", adminHandler.AdminAdvanceOrder)
				authorized.POST("/orders/:order_no/complete", adminHandler.AdminCompleteOrder)
				authorized.DELETE("/orders/:order_no/gift-cards/:id", adminHandler.AdminRemoveOrderGiftCard)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
