package handlers

import (
	"net/http"
	"time"
	"tripmate-backend/database"
	"tripmate-backend/models"
	"tripmate-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func parseDatePtr(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// findOwnedTrip loads a trip and verifies the caller owns it.
func findOwnedTrip(c *gin.Context, tripID uuid.UUID) (*models.Trip, bool) {
	userID := utils.GetCurrentUserID(c)

	var trip models.Trip
	err := database.DB.Where("id = ? AND user_id = ?", tripID, userID).First(&trip).Error
	if err != nil {
		utils.NotFound(c, "Trip not found")
		return nil, false
	}
	return &trip, true
}

// POST /api/trips
func CreateTrip(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	startDate, err := parseDatePtr(req.StartDate)
	if err != nil {
		utils.BadRequest(c, "Invalid start date")
		return
	}
	endDate, err := parseDatePtr(req.EndDate)
	if err != nil {
		utils.BadRequest(c, "Invalid end date")
		return
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		utils.BadRequest(c, "End date must not be before start date")
		return
	}

	trip := models.Trip{
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		Destination:   req.Destination,
		CoverImageURL: req.CoverImageURL,
		StartDate:     startDate,
		EndDate:       endDate,
		Budget:        req.Budget,
	}
	if req.Status != "" {
		trip.Status = req.Status
	}
	if req.Visibility != "" {
		trip.Visibility = req.Visibility
	}
	if req.Currency != "" {
		trip.Currency = req.Currency
	}

	if err := database.DB.Create(&trip).Error; err != nil {
		utils.InternalError(c, "Failed to create trip")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

// GET /api/trips
func GetTrips(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var trips []models.Trip
	database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&trips)

	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GET /api/trips/:id
func GetTrip(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	var trip models.Trip
	if err := database.DB.Preload("Itinerary", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_number ASC, order_index ASC")
	}).First(&trip, tripID).Error; err != nil {
		utils.NotFound(c, "Trip not found")
		return
	}

	if trip.UserID != userID && trip.Visibility != "public" {
		utils.NotFound(c, "Trip not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// PATCH /api/trips/:id
func UpdateTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	trip, ok := findOwnedTrip(c, tripID)
	if !ok {
		return
	}

	var req models.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Destination != "" {
		updates["destination"] = req.Destination
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Visibility != "" {
		updates["visibility"] = req.Visibility
	}
	if req.Budget > 0 {
		updates["budget"] = req.Budget
	}
	if req.Currency != "" {
		updates["currency"] = req.Currency
	}
	if req.CoverImageURL != "" {
		updates["cover_image_url"] = req.CoverImageURL
	}
	if req.StartDate != "" {
		startDate, err := parseDatePtr(req.StartDate)
		if err != nil {
			utils.BadRequest(c, "Invalid start date")
			return
		}
		updates["start_date"] = startDate
	}
	if req.EndDate != "" {
		endDate, err := parseDatePtr(req.EndDate)
		if err != nil {
			utils.BadRequest(c, "Invalid end date")
			return
		}
		updates["end_date"] = endDate
	}

	if len(updates) > 0 {
		if err := database.DB.Model(trip).Updates(updates).Error; err != nil {
			utils.InternalError(c, "Failed to update trip")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// DELETE /api/trips/:id
func DeleteTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	trip, ok := findOwnedTrip(c, tripID)
	if !ok {
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", tripID).Delete(&models.ItineraryItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(trip).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to delete trip")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/trips/:id/itinerary
func GetItinerary(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	if _, ok := findOwnedTrip(c, tripID); !ok {
		return
	}

	var items []models.ItineraryItem
	database.DB.Where("trip_id = ?", tripID).
		Order("day_number ASC, order_index ASC").
		Find(&items)

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// POST /api/trips/:id/itinerary
func CreateItineraryItem(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	if _, ok := findOwnedTrip(c, tripID); !ok {
		return
	}

	var req models.CreateItineraryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	item := models.ItineraryItem{
		TripID:      tripID,
		DayNumber:   req.DayNumber,
		OrderIndex:  req.OrderIndex,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Cost:        req.Cost,
		Notes:       req.Notes,
	}
	if req.Currency != "" {
		item.Currency = req.Currency
	}

	if err := database.DB.Create(&item).Error; err != nil {
		utils.InternalError(c, "Failed to create itinerary item")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// PATCH /api/trips/:id/itinerary/:itemId
func UpdateItineraryItem(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.BadRequest(c, "Invalid item ID")
		return
	}

	if _, ok := findOwnedTrip(c, tripID); !ok {
		return
	}

	var item models.ItineraryItem
	if err := database.DB.Where("id = ? AND trip_id = ?", itemID, tripID).First(&item).Error; err != nil {
		utils.NotFound(c, "Itinerary item not found")
		return
	}

	var req models.UpdateItineraryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.DayNumber > 0 {
		updates["day_number"] = req.DayNumber
	}
	if req.OrderIndex != nil {
		updates["order_index"] = *req.OrderIndex
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.StartTime != "" {
		updates["start_time"] = req.StartTime
	}
	if req.EndTime != "" {
		updates["end_time"] = req.EndTime
	}
	if req.Cost > 0 {
		updates["cost"] = req.Cost
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&item).Updates(updates).Error; err != nil {
			utils.InternalError(c, "Failed to update itinerary item")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DELETE /api/trips/:id/itinerary/:itemId
func DeleteItineraryItem(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.BadRequest(c, "Invalid item ID")
		return
	}

	if _, ok := findOwnedTrip(c, tripID); !ok {
		return
	}

	result := database.DB.Where("id = ? AND trip_id = ?", itemID, tripID).Delete(&models.ItineraryItem{})
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Itinerary item not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PATCH /api/trips/:id/itinerary/reorder
func ReorderItinerary(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	if _, ok := findOwnedTrip(c, tripID); !ok {
		return
	}

	var req models.ReorderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	itemIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			utils.BadRequest(c, "Invalid item ID")
			return
		}
		itemIDs[i] = id
	}

	// All items must belong to this trip
	var count int64
	database.DB.Model(&models.ItineraryItem{}).
		Where("trip_id = ? AND id IN ?", tripID, itemIDs).
		Count(&count)
	if count != int64(len(itemIDs)) {
		utils.BadRequest(c, "Some items do not belong to this trip")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i, item := range req.Items {
			err := tx.Model(&models.ItineraryItem{}).
				Where("id = ?", itemIDs[i]).
				Updates(map[string]interface{}{
					"day_number":  item.DayNumber,
					"order_index": item.OrderIndex,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalError(c, "Failed to reorder itinerary")
		return
	}

	var items []models.ItineraryItem
	database.DB.Where("trip_id = ?", tripID).
		Order("day_number ASC, order_index ASC").
		Find(&items)

	c.JSON(http.StatusOK, gin.H{"items": items})
}
