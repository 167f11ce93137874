package router

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/handler"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers mounted by the API
type Handlers struct {
	Auth         *handler.AuthHandler
	Organization *handler.OrganizationHandler
	Member       *handler.MemberHandler
	Invitation   *handler.InvitationHandler
	Account      *handler.AccountHandler
	Leave        *handler.LeaveHandler
	Payroll      *handler.PayrollHandler
	Document     *handler.DocumentHandler
	Task         *handler.TaskHandler
	Chat         *handler.ChatHandler
	Notification *handler.NotificationHandler
	Billing      *handler.BillingHandler
}

// Guards are the middleware chains the route table attaches
type Guards struct {
	// Authenticate runs before every protected route: token validation,
	// tenant binding and the subscription write guard.
	Authenticate []gin.HandlerFunc
	// LoginLimit throttles credential endpoints. Optional.
	LoginLimit  gin.HandlerFunc
	Permissions *middleware.Permissions
}

// API builds the route table. Public groups come first; everything else is
// authenticated and gated by object:action permissions.
func API(h Handlers, g Guards) []RouteRegistrar {
	can := g.Permissions.Require
	limited := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if g.LoginLimit == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{g.LoginLimit, next}
	}

	public := NewGroup("")
	public.Group("/auth").
		POST("/register", limited(h.Auth.Register)...).
		POST("/login", limited(h.Auth.Login)...).
		POST("/refresh", limited(h.Auth.Refresh)...)
	public.POST("/invitations/accept", limited(h.Invitation.Accept)...)
	public.POST("/webhooks/stripe", h.Billing.StripeWebhook)

	api := NewGroup("").Use(g.Authenticate...)

	api.Group("/auth").
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me).
		PUT("/password", h.Auth.ChangePassword)

	api.Group("/organization").
		GET("", can("organization", "read"), h.Organization.Get).
		PUT("", can("organization", "update"), h.Organization.Update)

	api.Group("/members").
		GET("", can("member", "read"), h.Member.List).
		GET("/:id", can("member", "read"), h.Member.Get).
		PUT("/:id", can("member", "manage"), h.Member.Update).
		POST("/:id/suspend", can("member", "manage"), h.Member.Suspend).
		POST("/:id/reactivate", can("member", "manage"), h.Member.Reactivate)

	api.Group("/invitations").
		POST("", can("invitation", "manage"), h.Invitation.Create).
		GET("", can("invitation", "manage"), h.Invitation.List).
		DELETE("/:id", can("invitation", "manage"), h.Invitation.Revoke)

	api.Group("/me").
		GET("/profile", can("member", "read_self"), h.Account.GetProfile).
		PUT("/profile", can("profile", "update_self"), h.Account.UpdateProfile).
		POST("/avatar", can("profile", "update_self"), h.Account.AvatarUpload).
		POST("/avatar/confirm", can("profile", "update_self"), h.Account.ConfirmAvatar).
		POST("/devices", can("device", "manage"), h.Account.RegisterDevice).
		DELETE("/devices", can("device", "manage"), h.Account.UnregisterDevice).
		GET("/preferences", can("preference", "manage"), h.Account.GetPreferences).
		PUT("/preferences", can("preference", "manage"), h.Account.UpdatePreferences).
		GET("/profile-documents", can("profile_document", "manage_self"), h.Document.ProfileDocuments).
		POST("/profile-documents", can("profile_document", "manage_self"), h.Document.CreateProfileDocument)

	api.Group("/users/:user_id").
		GET("/profile", can("member", "read"), h.Account.GetProfile).
		PUT("/profile", can("profile", "update_any"), h.Account.UpdateProfile).
		GET("/avatar", can("organization", "read"), h.Account.Avatar).
		POST("/roles", can("role", "manage"), h.Member.AssignRole).
		DELETE("/roles/:role", can("role", "manage"), h.Member.RevokeRole).
		GET("/profile-documents", can("profile_document", "manage"), h.Document.ProfileDocuments).
		POST("/profile-documents", can("profile_document", "manage"), h.Document.CreateProfileDocument)

	api.Group("/profile-documents").
		GET("/expiring", can("profile_document", "manage"), h.Document.ExpiringProfileDocuments).
		PUT("/:id", can("profile_document", "manage_self"), h.Document.UpdateProfileDocument).
		DELETE("/:id", can("profile_document", "manage_self"), h.Document.DeleteProfileDocument)

	leave := api.Group("/leave")
	leave.Group("/types").
		GET("", can("leave_type", "read"), h.Leave.ListTypes).
		POST("", can("leave_type", "manage"), h.Leave.CreateType).
		PUT("/:id", can("leave_type", "manage"), h.Leave.UpdateType)
	leave.Group("/balances").
		GET("", can("leave_request", "read_self"), h.Leave.Balances).
		POST("/adjustments", can("leave_balance", "manage"), h.Leave.AdjustBalance).
		POST("/initialize", can("leave_balance", "manage"), h.Leave.InitializeBalances)
	leave.Group("/requests").
		POST("", can("leave_request", "submit"), h.Leave.Submit).
		GET("", can("leave_request", "read_self"), h.Leave.ListRequests).
		GET("/pending", can("leave_request", "decide"), h.Leave.PendingApprovals).
		GET("/:id", can("leave_request", "read_self"), h.Leave.GetRequest).
		POST("/:id/senior-approve", can("leave_request", "decide"), h.Leave.SeniorApprove).
		POST("/:id/approve", can("leave_request", "decide"), h.Leave.Approve).
		POST("/:id/reject", can("leave_request", "decide"), h.Leave.Reject).
		POST("/:id/cancel", can("leave_request", "cancel"), h.Leave.Cancel)

	api.Group("/holidays").
		GET("", can("organization", "read"), h.Leave.ListHolidays).
		POST("", can("holiday", "manage"), h.Leave.CreateHoliday).
		DELETE("/:id", can("holiday", "manage"), h.Leave.DeleteHoliday).
		POST("/:id/translate", can("holiday", "manage"), h.Leave.TranslateHoliday)

	api.Group("/payroll").
		POST("", can("payroll", "manage"), h.Payroll.Create).
		GET("", can("payroll", "read_self"), h.Payroll.List).
		GET("/register", can("payroll", "export"), h.Payroll.Register).
		GET("/notifications", can("payroll", "read_self"), h.Payroll.Notifications).
		POST("/notifications/:id/read", can("payroll", "read_self"), h.Payroll.MarkNotificationRead).
		GET("/:id", can("payroll", "read_self"), h.Payroll.Get).
		PUT("/:id", can("payroll", "manage"), h.Payroll.UpdateDraft).
		DELETE("/:id", can("payroll", "manage"), h.Payroll.Delete).
		POST("/:id/submit", can("payroll", "manage"), h.Payroll.Submit).
		POST("/:id/approve", can("payroll", "approve"), h.Payroll.Approve).
		POST("/:id/return", can("payroll", "approve"), h.Payroll.Return).
		POST("/:id/confirm", can("payroll", "respond"), h.Payroll.Confirm).
		POST("/:id/dispute", can("payroll", "respond"), h.Payroll.Dispute).
		POST("/:id/resolve", can("payroll", "resolve"), h.Payroll.Resolve).
		GET("/:id/payslip", can("payroll", "read_self"), h.Payroll.Payslip)

	api.Group("/documents").
		POST("", can("document", "upload"), h.Document.InitiateUpload).
		GET("", can("document", "read_self"), h.Document.List).
		GET("/export", can("document", "export"), h.Document.Export).
		GET("/discussions", can("document", "comment"), h.Document.PendingDiscussions).
		GET("/:id", can("document", "read_self"), h.Document.Get).
		POST("/:id/versions", can("document", "upload"), h.Document.InitiateReplacement).
		GET("/:id/versions", can("document", "read_self"), h.Document.Versions).
		POST("/:id/confirm", can("document", "upload"), h.Document.ConfirmUpload).
		POST("/:id/approve", can("document", "review"), h.Document.Approve).
		POST("/:id/reject", can("document", "review"), h.Document.Reject).
		GET("/:id/download", can("document", "read_self"), h.Document.Download).
		GET("/:id/comments", can("document", "comment"), h.Document.Comments).
		POST("/:id/comments", can("document", "comment"), h.Document.AddComment)

	api.Group("/tasks").
		POST("", can("task", "manage"), h.Task.Create).
		GET("", can("task", "read_self"), h.Task.List).
		GET("/:id", can("task", "read_self"), h.Task.Get).
		PUT("/:id", can("task", "manage"), h.Task.Update).
		POST("/:id/start", can("task", "work"), h.Task.Start).
		POST("/:id/complete", can("task", "work"), h.Task.Complete).
		POST("/:id/cancel", can("task", "manage"), h.Task.Cancel).
		POST("/:id/reopen", can("task", "manage"), h.Task.Reopen)

	api.Group("").
		POST("/messages", can("chat", "use"), h.Chat.Send).
		PUT("/messages/:id", can("chat", "use"), h.Chat.Edit).
		DELETE("/messages/:id", can("chat", "use"), h.Chat.Delete).
		GET("/conversations", can("chat", "use"), h.Chat.Conversations).
		GET("/conversations/:user_id", can("chat", "use"), h.Chat.Conversation).
		POST("/conversations/:user_id/read", can("chat", "use"), h.Chat.MarkRead).
		GET("/ws", can("chat", "use"), h.Chat.WebSocket)

	api.Group("/notifications").
		GET("/counts", can("notification", "read"), h.Notification.Counts).
		POST("/push", can("notification", "push"), h.Notification.Push)

	api.Group("/billing").
		GET("/subscription", can("billing", "read"), h.Billing.Subscription)

	return []RouteRegistrar{public, api}
}

// System mounts the probes and build info at the engine root, outside the
// versioned API and its authentication.
func System(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
	engine.GET("/info", h.Info)
}
