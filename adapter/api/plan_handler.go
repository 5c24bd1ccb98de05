package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanHandler serves the plan endpoints.
type PlanHandler struct {
	generate     *commands.GeneratePlanHandler
	setCompleted *commands.SetItemCompletedHandler
	getPlan      *queries.GetPlanHandler
	listPlans    *queries.ListPlansHandler
	logger       *slog.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(
	generate *commands.GeneratePlanHandler,
	setCompleted *commands.SetItemCompletedHandler,
	getPlan *queries.GetPlanHandler,
	listPlans *queries.ListPlansHandler,
	logger *slog.Logger,
) *PlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanHandler{
		generate:     generate,
		setCompleted: setCompleted,
		getPlan:      getPlan,
		listPlans:    listPlans,
		logger:       logger,
	}
}

// GeneratePlanRequest is the optional body of POST /plans/:date/generate.
type GeneratePlanRequest struct {
	Style       string   `json:"style"`
	Intensity   string   `json:"intensity"`
	ActivityIDs []string `json:"activity_ids"`
}

// RejectionDTO is a task the plan could not hold.
type RejectionDTO struct {
	SourceID uuid.UUID `json:"source_id"`
	Title    string    `json:"title"`
	Reason   string    `json:"reason"`
}

// GeneratePlanResponse is the stored plan with what was left out.
type GeneratePlanResponse struct {
	Plan          queries.PlanDTO `json:"plan"`
	Rejections    []RejectionDTO  `json:"rejections"`
	PlacedMinutes int             `json:"placed_minutes"`
}

// SetItemCompletedRequest is the body of PATCH /plans/:date/items/:itemID.
type SetItemCompletedRequest struct {
	Completed *bool `json:"completed"`
}

// SetItemCompletedResponse reports the item after the change.
type SetItemCompletedResponse struct {
	Item    queries.PlanItemDTO `json:"item"`
	Changed bool                `json:"changed"`
}

func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req GeneratePlanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			abortWithError(c, ErrBadRequest.WithMessage("invalid body: %v", err))
			return
		}
	}
	activityIDs := make([]uuid.UUID, 0, len(req.ActivityIDs))
	for _, raw := range req.ActivityIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			abortWithError(c, ErrBadRequest.WithMessage("invalid activity id %q", raw))
			return
		}
		activityIDs = append(activityIDs, id)
	}

	result, err := h.generate.Handle(c.Request.Context(), commands.GeneratePlanCommand{
		UserID:      currentUser(c),
		Date:        date,
		Style:       req.Style,
		Intensity:   req.Intensity,
		ActivityIDs: activityIDs,
	})
	if err != nil {
		h.fail(c, "generate plan", err)
		return
	}

	resp := GeneratePlanResponse{
		Plan:          queries.ToPlanDTO(result.Plan),
		Rejections:    make([]RejectionDTO, 0, len(result.Rejections)),
		PlacedMinutes: result.PlacedMinutes,
	}
	for _, r := range result.Rejections {
		resp.Rejections = append(resp.Rejections, RejectionDTO{SourceID: r.SourceID, Title: r.Title, Reason: string(r.Reason)})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	plan, err := h.getPlan.Handle(c.Request.Context(), queries.GetPlanQuery{UserID: currentUser(c), Date: date})
	if err != nil {
		h.fail(c, "get plan", err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	from := domain.DateOf(timeNow())
	if raw := c.Query("from"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			abortWithError(c, ErrBadRequest.WithMessage("invalid from date %q, use YYYY-MM-DD", raw))
			return
		}
		from = d
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 31 {
			abortWithError(c, ErrBadRequest.WithMessage("days must be between 1 and 31"))
			return
		}
		days = n
	}

	summaries, err := h.listPlans.Handle(c.Request.Context(), queries.ListPlansQuery{
		UserID: currentUser(c),
		From:   from,
		Days:   days,
	})
	if err != nil {
		h.fail(c, "list plans", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": summaries})
}

func (h *PlanHandler) SetItemCompleted(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		abortWithError(c, ErrBadRequest.WithMessage("invalid item id"))
		return
	}
	var req SetItemCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Completed == nil {
		abortWithError(c, ErrBadRequest.WithMessage(`body must be {"completed": true|false}`))
		return
	}

	result, err := h.setCompleted.Handle(c.Request.Context(), commands.SetItemCompletedCommand{
		UserID:    currentUser(c),
		Date:      date,
		ItemID:    itemID,
		Completed: *req.Completed,
	})
	if err != nil {
		h.fail(c, "set item completed", err)
		return
	}
	c.JSON(http.StatusOK, SetItemCompletedResponse{Item: queries.ToItemDTO(result.Item), Changed: result.Changed})
}

func dateParam(c *gin.Context) (domain.Date, bool) {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		abortWithError(c, ErrBadRequest.WithMessage("invalid date %q, use YYYY-MM-DD", c.Param("date")))
		return domain.Date{}, false
	}
	return date, true
}

// fail maps application errors to API errors.
func (h *PlanHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrPlanNotFound):
		abortWithError(c, ErrNotFound.WithMessage("no plan for this date"))
	case errors.Is(err, domain.ErrItemNotFound):
		abortWithError(c, ErrNotFound.WithMessage("no such plan item"))
	case errors.Is(err, domain.ErrGenerationInProgress):
		abortWithError(c, ErrConflict)
	default:
		h.logger.ErrorContext(c.Request.Context(), "request failed", "operation", op, "error", err)
		abortWithError(c, ErrInternalServer)
	}
}
