package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/middleware"
	"github.com/example/campusmart/internal/models"
	"github.com/example/campusmart/internal/storage"
	"github.com/example/campusmart/internal/utils"
	"github.com/example/campusmart/internal/verification"
)

// VerificationHandler manages document submission and admin review.
type VerificationHandler struct {
	db    *gorm.DB
	gate  *verification.Gate
	files storage.Store
}

// NewVerificationHandler constructs a VerificationHandler.
func NewVerificationHandler(db *gorm.DB, gate *verification.Gate, files storage.Store) *VerificationHandler {
	return &VerificationHandler{db: db, gate: gate, files: files}
}

// UploadVerification accepts seller-context identity documents (multipart
// fields idScan, faceScan) and moves the caller to pending review.
func (h *VerificationHandler) UploadVerification(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	docs, err := h.collectDocuments(c, "idScan", "faceScan")
	if err != nil {
		return err
	}

	if err := h.gate.SubmitSellerDocuments(c.Context(), userID, docs); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"verification_status": models.VerificationPending,
	})
}

// UploadBuyerVerification accepts buyer-context identity documents
// (multipart fields buyerIdScan, buyerFaceScan).
func (h *VerificationHandler) UploadBuyerVerification(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	docs, err := h.collectDocuments(c, "buyerIdScan", "buyerFaceScan")
	if err != nil {
		return err
	}

	if err := h.gate.SubmitBuyerDocuments(c.Context(), userID, docs); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"verification_status": models.VerificationPending,
	})
}

func (h *VerificationHandler) collectDocuments(c *fiber.Ctx, idField, faceField string) (verification.Documents, error) {
	var docs verification.Documents

	ref, err := h.saveUpload(c, idField)
	if err != nil {
		return docs, err
	}
	docs.IDScan = ref

	ref, err = h.saveUpload(c, faceField)
	if err != nil {
		return docs, err
	}
	docs.FaceScan = ref

	return docs, nil
}

func (h *VerificationHandler) saveUpload(c *fiber.Ctx, field string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// The field is optional; the gate decides whether the submission
		// as a whole is acceptable.
		return "", nil
	}
	return h.storeFile(header)
}

func (h *VerificationHandler) storeFile(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.files.Save(header.Filename, f)
}

// ListPendingVerifications returns the admin review queue.
func (h *VerificationHandler) ListPendingVerifications(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	users, total, err := h.gate.ListPending(c.Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

// ReviewVerification records an admin decision on a pending submission.
func (h *VerificationHandler) ReviewVerification(c *fiber.Ctx) error {
	reviewerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	var reviewer models.User
	if err := h.db.WithContext(c.Context()).First(&reviewer, "id = ?", reviewerID).Error; err != nil {
		return err
	}

	if err := h.gate.Review(c.Context(), &reviewer, userID, req.Decision, req.Notes); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"verification_status": req.Decision,
	})
}
