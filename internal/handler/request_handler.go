package handler

import (
	"errors"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RequestHandler struct {
	requestService  service.RequestService
	approvalService service.ApprovalService
}

func NewRequestHandler(requestService service.RequestService, approvalService service.ApprovalService) *RequestHandler {
	return &RequestHandler{
		requestService:  requestService,
		approvalService: approvalService,
	}
}

// CreateRequest handles draft creation
// POST /api/v1/requests
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	var input service.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	requesterID, err := getActorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	req, err := h.requestService.CreateRequest(&input, requesterID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Request created", "data": req})
}

// SubmitRequest routes a draft into the approval chain
// POST /api/v1/requests/:id/submit
func (h *RequestHandler) SubmitRequest(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	req, err := h.requestService.SubmitRequest(requestID, actorID)
	if err != nil {
		return requestError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Request submitted", "data": req})
}

type decisionBody struct {
	Comments string `json:"comments"`
}

// ApproveRequest applies an approval decision
// POST /api/v1/requests/:id/approve
func (h *RequestHandler) ApproveRequest(c *fiber.Ctx) error {
	return h.decide(c, model.ActionApprove)
}

// RejectRequest applies a rejection decision
// POST /api/v1/requests/:id/reject
func (h *RequestHandler) RejectRequest(c *fiber.Ctx) error {
	return h.decide(c, model.ActionReject)
}

func (h *RequestHandler) decide(c *fiber.Ctx, action model.ApprovalAction) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var body decisionBody
	c.BodyParser(&body) // comments are optional; an empty body is fine

	req, err := h.approvalService.ProcessApproval(requestID, actorID, action, body.Comments)
	if err != nil {
		return requestError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Decision recorded", "data": req})
}

// GetRequests lists all requests
// GET /api/v1/requests
func (h *RequestHandler) GetRequests(c *fiber.Ctx) error {
	requests, err := h.requestService.GetAllRequests()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(requests)
}

// GetMyRequests lists the caller's requests
// GET /api/v1/requests/mine
func (h *RequestHandler) GetMyRequests(c *fiber.Ctx) error {
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	requests, err := h.requestService.GetRequestsByRequester(actorID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(requests)
}

// GetRequest fetches one request
// GET /api/v1/requests/:id
func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	req, err := h.requestService.GetRequest(requestID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Request not found"})
	}

	// Members only see their own requests.
	if getUserRole(c) == string(model.RoleMember) {
		actorID, err := getActorID(c)
		if err != nil || req.RequesterID != actorID {
			return c.Status(403).JSON(fiber.Map{"error": "Not authorized to view this request"})
		}
	}
	return c.JSON(req)
}

// GetApprovalHistory lists the audit trail of a request
// GET /api/v1/requests/:id/history
func (h *RequestHandler) GetApprovalHistory(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	history, err := h.requestService.GetApprovalHistory(requestID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(history)
}

// requestError maps workflow errors onto HTTP statuses. Authorization and
// state-machine failures are user-visible; everything else is a 400.
func requestError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRequestNotFound), errors.Is(err, service.ErrRequesterNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotRequester):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSupplierNotApproved):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
}
