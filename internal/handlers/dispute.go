// internal/handlers/dispute.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/services"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

type DisputeHandler struct {
	disputeService *services.DisputeService
	storageService *services.StorageService
}

func NewDisputeHandler(disputeService *services.DisputeService, storageService *services.StorageService) *DisputeHandler {
	return &DisputeHandler{
		disputeService: disputeService,
		storageService: storageService,
	}
}

// POST /disputes
func (h *DisputeHandler) CreateDispute(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	dispute, err := h.disputeService.Create(userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, dispute)
}

// GET /disputes
func (h *DisputeHandler) GetDisputes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	disputes, total, err := h.disputeService.ListForUser(userID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(disputes, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid dispute ID", nil)
		return
	}

	role, _ := utils.GetUserRoleFromContext(c)
	isAdmin := role == string(models.UserRoleAdmin)

	dispute, err := h.disputeService.Get(disputeID, userID, isAdmin)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, dispute)
}

// POST /disputes/:id/messages
func (h *DisputeHandler) AddMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid dispute ID", nil)
		return
	}

	var req services.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	message, err := h.disputeService.AddMessage(disputeID, userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, message)
}

// PUT /disputes/:id/resolve (admin)
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid dispute ID", nil)
		return
	}

	var req services.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	dispute, err := h.disputeService.Resolve(disputeID, adminID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, dispute)
}

// POST /disputes/upload-evidence
func (h *DisputeHandler) UploadEvidence(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "invalid multipart form", err.Error())
		return
	}

	files := form.File["evidence"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "no files provided", nil)
		return
	}
	if len(files) > 5 {
		utils.BadRequestResponse(c, "too many files", nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("evidence")

	var results []*services.UploadResult
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "failed to open file", err.Error())
			return
		}

		result, err := h.storageService.UploadFile(file, header, options)
		file.Close()
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		results = append(results, result)
	}

	utils.SuccessResponse(c, gin.H{"uploads": results})
}
