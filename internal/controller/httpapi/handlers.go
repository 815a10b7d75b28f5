package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/Freeeeeet/artacademy/internal/service"
	"github.com/Freeeeeet/artacademy/internal/videoroom"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const webhookSecretHeader = "X-Webhook-Secret"

type AccessEvaluator interface {
	EvaluateAccess(ctx context.Context, p *model.Principal, courseID string) service.AccessResult
}

type CourseService interface {
	ListCourses(ctx context.Context) []*model.Course
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	CreateCourse(ctx context.Context, in service.CreateCourseInput) (*model.Course, error)
	AddMaterial(ctx context.Context, courseID string, in service.AddMaterialInput) (*model.CourseMaterial, error)
	ListMaterials(ctx context.Context, p *model.Principal, courseID string) ([]*model.CourseMaterial, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, p *model.Principal, courseID string) (*model.CourseEnrollment, error)
	ConfirmPayment(ctx context.Context, ev service.PaymentEvent) (*model.CourseEnrollment, error)
	RevokeAccess(ctx context.Context, enrollmentID string) error
}

type SessionService interface {
	ResolveJoin(ctx context.Context, req service.JoinRequest, p *model.Principal) (*service.JoinDirective, error)
	StartSession(ctx context.Context, sessionID, channel string) (*model.LiveSession, error)
	Leave(ctx context.Context, role model.Role, channel string) *service.LeaveOutcome
	SweepExpired(ctx context.Context) int
	ListLive(ctx context.Context) []*model.LiveSession
	ListUpcoming(ctx context.Context) []*model.LiveSession
	CreateSession(ctx context.Context, in service.CreateSessionInput) (*model.LiveSession, error)
}

type AnnouncementService interface {
	ListActive(ctx context.Context, limit int) []*model.Announcement
}

type Handler struct {
	access        AccessEvaluator
	courses       CourseService
	enrollments   EnrollmentService
	sessions      SessionService
	announcements AnnouncementService
	video         videoroom.Provider
	webhookSecret string
	logger        *zap.Logger
}

func NewHandler(
	access AccessEvaluator,
	courses CourseService,
	enrollments EnrollmentService,
	sessions SessionService,
	announcements AnnouncementService,
	video videoroom.Provider,
	webhookSecret string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		access:        access,
		courses:       courses,
		enrollments:   enrollments,
		sessions:      sessions,
		announcements: announcements,
		video:         video,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	success(c, gin.H{"status": "ok"})
}

// ============ Курсы ============

func (h *Handler) ListCourses(c *gin.Context) {
	success(c, h.courses.ListCourses(c.Request.Context()))
}

func (h *Handler) GetCourse(c *gin.Context) {
	course, err := h.courses.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, course)
}

func (h *Handler) CourseAccess(c *gin.Context) {
	result := h.access.EvaluateAccess(c.Request.Context(), principalFrom(c), c.Param("id"))
	success(c, result)
}

func (h *Handler) ListMaterials(c *gin.Context) {
	materials, err := h.courses.ListMaterials(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, materials)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var in service.CreateCourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	course, err := h.courses.CreateCourse(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, course)
}

func (h *Handler) AddMaterial(c *gin.Context) {
	var in service.AddMaterialInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	material, err := h.courses.AddMaterial(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, material)
}

// ============ Записи и оплата ============

func (h *Handler) Enroll(c *gin.Context) {
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, enrollment)
}

// PaymentCallback доверенный серверный callback платёжной системы
func (h *Handler) PaymentCallback(c *gin.Context) {
	if h.webhookSecret == "" {
		fail(c, http.StatusNotFound, "NOT_FOUND", "payment callback is disabled")
		return
	}

	given := c.GetHeader(webhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(given), []byte(h.webhookSecret)) != 1 {
		writeError(c, model.ErrNotAuthenticated)
		return
	}

	var ev service.PaymentEvent
	if err := c.ShouldBindJSON(&ev); err != nil || ev.EnrollmentID == "" {
		badRequest(c, "enrollment_id and status are required")
		return
	}

	enrollment, err := h.enrollments.ConfirmPayment(c.Request.Context(), ev)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, enrollment)
}

func (h *Handler) RevokeEnrollment(c *gin.Context) {
	if err := h.enrollments.RevokeAccess(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	success(c, gin.H{"revoked": true})
}

// ============ Занятия ============

func (h *Handler) ListLive(c *gin.Context) {
	success(c, h.sessions.ListLive(c.Request.Context()))
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	success(c, h.sessions.ListUpcoming(c.Request.Context()))
}

func (h *Handler) ListAnnouncements(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			badRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	success(c, h.announcements.ListActive(c.Request.Context(), limit))
}

func (h *Handler) CreateSession(c *gin.Context) {
	var in service.CreateSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.sessions.CreateSession(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, session)
}

type startRequest struct {
	Channel string `json:"channel"`
}

func (h *Handler) StartSession(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	session, err := h.sessions.StartSession(c.Request.Context(), c.Param("id"), req.Channel)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, session)
}

type joinResponse struct {
	service.JoinDirective
	JoinURL string `json:"join_url"`
}

// JoinByLink deep link: GET /join?channel=...&teacher=true или ?session_id=...
func (h *Handler) JoinByLink(c *gin.Context) {
	var req service.JoinRequest
	if channel, ok := c.GetQuery("channel"); ok {
		req.Channel = &channel
	}
	req.SessionID = c.Query("session_id")
	req.WantsTeacherRole, _ = strconv.ParseBool(c.Query("teacher"))

	h.join(c, req)
}

// Join POST /join с JSON-телом
func (h *Handler) Join(c *gin.Context) {
	var req service.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, model.ErrInvalidJoinRequest)
		return
	}
	h.join(c, req)
}

func (h *Handler) join(c *gin.Context, req service.JoinRequest) {
	ctx := c.Request.Context()

	directive, err := h.sessions.ResolveJoin(ctx, req, principalFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	room, err := h.video.Join(ctx, videoroom.Participant{
		RoomName: directive.Channel,
		Role:     string(directive.Role),
		Identity: directive.Identity,
	})
	if err != nil {
		h.logger.Error("Video provider rejected join",
			zap.String("channel", directive.Channel),
			zap.Error(err),
		)
		writeError(c, model.ErrNotJoinable)
		return
	}

	success(c, joinResponse{JoinDirective: *directive, JoinURL: room.JoinURL})
}

type leaveRequest struct {
	Channel string `json:"channel"`
	Teacher bool   `json:"teacher"`
}

type leaveResponse struct {
	Ended  int    `json:"ended"`
	Notice string `json:"notice,omitempty"`
}

// Leave выход из комнаты; занятие закрывается только при выходе учителя
func (h *Handler) Leave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	role := service.ResolveRole(principalFrom(c), req.Teacher)
	outcome := h.sessions.Leave(c.Request.Context(), role, req.Channel)

	success(c, leaveResponse{Ended: len(outcome.Ended), Notice: outcome.Notice})
}

func (h *Handler) Sweep(c *gin.Context) {
	closed := h.sessions.SweepExpired(c.Request.Context())
	success(c, gin.H{"closed": closed})
}
