package http

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
	"docvault/internal/usecase"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type adminCreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

type userResponse struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
}

type signatureResponse struct {
	Algorithm     string `json:"algorithm"`
	Signer        string `json:"signer"`
	KeyReference  string `json:"key_reference,omitempty"`
	BackendSecure bool   `json:"backend_secure"`
}

type documentResponse struct {
	Name         string             `json:"name"`
	Digest       string             `json:"digest"`
	Owner        string             `json:"owner"`
	RegisteredAt string             `json:"registered_at"`
	Signature    *signatureResponse `json:"signature,omitempty"`
}

type verifyResponse struct {
	Document       string `json:"document"`
	Outcome        string `json:"outcome"`
	HashMatch      bool   `json:"hash_match"`
	SignatureValid *bool  `json:"signature_valid,omitempty"`
}

type auditEventResponse struct {
	ID        string `json:"id"`
	Document  string `json:"document"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
	Actor     string `json:"actor,omitempty"`
	CreatedAt string `json:"created_at"`
}

func buildUserResponse(user domain.User) userResponse {
	out := userResponse{
		Username: user.Username,
		Role:     string(user.Role),
		Active:   user.Active,
	}
	if !user.CreatedAt.IsZero() {
		out.CreatedAt = user.CreatedAt.UTC().Format(time.RFC3339)
	}
	if user.LastLogin != nil {
		out.LastLogin = user.LastLogin.UTC().Format(time.RFC3339)
	}
	return out
}

func buildDocumentResponse(rec domain.DocumentRecord) documentResponse {
	out := documentResponse{
		Name:         rec.Name,
		Digest:       rec.Digest,
		Owner:        rec.Owner,
		RegisteredAt: rec.RegisteredAt.UTC().Format(time.RFC3339),
	}
	if rec.Signature != nil {
		out.Signature = &signatureResponse{
			Algorithm:     string(rec.Signature.Algorithm),
			Signer:        rec.Signature.Signer,
			KeyReference:  rec.Signature.KeyReference,
			BackendSecure: rec.Signature.BackendSecure,
		}
	}
	return out
}

func buildAuditResponse(events []domain.AuditEvent) []auditEventResponse {
	out := make([]auditEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, auditEventResponse{
			ID:        event.ID,
			Document:  event.Document,
			Action:    string(event.Action),
			Outcome:   event.Outcome,
			Actor:     event.Actor,
			CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func (s *Server) handleSignup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	user, err := s.users.Signup(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildUserResponse(*user))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	tokenStr, user, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": tokenStr,
		"token_type":   "bearer",
		"user":         buildUserResponse(*user),
	})
}

func (s *Server) handleChangePassword(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.users.ChangePassword(c.Request.Context(), actor, req.OldPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

// openUpload pulls the multipart payload out of the request.
func openUpload(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "multipart field 'file' is required")
		return nil, nil, false
	}
	file, err := header.Open()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "unreadable upload")
		return nil, nil, false
	}
	return file, header, true
}

func (s *Server) handleRegister(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	file, header, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}
	resp, err := s.registerUC.Execute(c.Request.Context(), usecase.RegisterDocumentRequest{
		Name:    name,
		Content: file,
		Actor:   actor,
	})
	if err != nil {
		if resp != nil {
			// Registered but the audit write failed: both facts surface.
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":     "AUDIT_WRITE_FAILED",
				"message":  "document registered but the audit event was not recorded",
				"document": buildDocumentResponse(resp.Record),
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildDocumentResponse(resp.Record))
}

func (s *Server) handleVerify(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	file, _, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	resp, err := s.verifyUC.Execute(c.Request.Context(), usecase.VerifyDocumentRequest{
		Name:    c.Param("name"),
		Content: file,
		Actor:   actor,
	})
	if err != nil && resp == nil {
		writeError(c, err)
		return
	}

	out := verifyResponse{
		Document:       c.Param("name"),
		Outcome:        string(resp.Outcome),
		HashMatch:      resp.HashMatch,
		SignatureValid: resp.SignatureValid,
	}
	status := http.StatusOK
	if resp.Outcome == domain.OutcomeNotFound {
		status = http.StatusNotFound
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "AUDIT_WRITE_FAILED",
			"message": "verification completed but the audit event was not recorded",
			"result":  out,
		})
		return
	}
	c.JSON(status, out)
}

func (s *Server) handleListDocuments(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	records, err := s.documents.List(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]documentResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, buildDocumentResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

func (s *Server) handleGetDocument(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	record, err := s.documents.Get(c.Request.Context(), actor, c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildDocumentResponse(*record))
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	if err := s.documents.Delete(c.Request.Context(), actor, c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "document": c.Param("name")})
}

func (s *Server) handleAuditLogs(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid limit")
			return
		}
		limit = parsed
	}
	events, err := s.auditQ.Recent(c.Request.Context(), actor, c.Query("document"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": buildAuditResponse(events)})
}

func (s *Server) handleAuditExport(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	events, err := s.auditQ.Export(c.Request.Context(), actor, c.Query("document"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": buildAuditResponse(events), "count": len(events)})
}

func (s *Server) handleListAlerts(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	unreadOnly := c.Query("unread") == "true"
	alerts, err := s.alerts.List(c.Request.Context(), actor, unreadOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (s *Server) handleMarkAlertRead(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	if err := s.alerts.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (s *Server) handleMarkAllAlertsRead(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	count, err := s.alerts.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": count})
}

func (s *Server) handleClearAlerts(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	count, err := s.alerts.Clear(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": count})
}

func (s *Server) handleDescribeRole(c *gin.Context) {
	if _, ok := s.requireAuth(c); !ok {
		return
	}
	raw := c.Param("role")
	if !domain.ValidRole(raw) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "unknown role")
		return
	}
	role := domain.ParseRole(raw)
	c.JSON(http.StatusOK, gin.H{
		"role":        string(role),
		"description": rbac.Describe(role),
		"permissions": rbac.Permissions(role),
	})
}

func (s *Server) handleAdminCreateUser(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	var req adminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	user, err := s.users.CreateUser(c.Request.Context(), actor, req.Username, req.Password, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildUserResponse(*user))
}

func (s *Server) handleAdminChangeRole(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	user, err := s.users.ChangeRole(c.Request.Context(), actor, c.Param("username"), req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildUserResponse(*user))
}

func (s *Server) handleAdminDeactivateUser(c *gin.Context) {
	actor, ok := s.requireAuth(c)
	if !ok {
		return
	}
	if err := s.users.Deactivate(c.Request.Context(), actor, c.Param("username")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated", "username": c.Param("username")})
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
