// internal/handlers/transaction.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akunbay/akunbay-backend/internal/services"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

type TransactionHandler struct {
	purchaseService   *services.PurchaseService
	credentialService *services.CredentialService
}

func NewTransactionHandler(purchaseService *services.PurchaseService,
	credentialService *services.CredentialService) *TransactionHandler {
	return &TransactionHandler{
		purchaseService:   purchaseService,
		credentialService: credentialService,
	}
}

type purchaseRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
}

// POST /transactions
func (h *TransactionHandler) CreatePurchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	result, err := h.purchaseService.CreatePurchase(c.Request.Context(), userID, req.ListingID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid transaction ID", nil)
		return
	}

	transaction, err := h.purchaseService.GetTransaction(transactionID, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, transaction)
}

// GET /transactions
func (h *TransactionHandler) GetTransactionHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	transactions, total, err := h.purchaseService.GetTransactionHistory(userID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(transactions, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /transactions/:id/credentials
func (h *TransactionHandler) GetCredentials(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid transaction ID", nil)
		return
	}

	disclosure, err := h.credentialService.Fetch(transactionID, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, disclosure)
}
