// internal/handlers/listing.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akunbay/akunbay-backend/internal/services"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
	storageService *services.StorageService
}

func NewListingHandler(listingService *services.ListingService, storageService *services.StorageService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		storageService: storageService,
	}
}

// GET /listings
func (h *ListingHandler) GetListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	category := c.Query("category")

	listings, total, err := h.listingService.ListActive(c.Request.Context(), params, category)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(listings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid listing ID", nil)
		return
	}

	listing, err := h.listingService.Get(c.Request.Context(), listingID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, listing)
}

// DELETE /listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid listing ID", nil)
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), userID, listingID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// POST /listings/upload-images
func (h *ListingHandler) UploadImages(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "invalid multipart form", err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "no files provided", nil)
		return
	}
	if len(files) > 10 {
		utils.BadRequestResponse(c, "too many files", nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("listings")

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
