package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"mingle/database"
	"mingle/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreateEventRequest struct {
	Title     string           `json:"title" binding:"required"`
	Body      string           `json:"body" binding:"required"`
	Topics    models.TopicList `json:"topics" binding:"required"`
	ExpiresAt string           `json:"expiresAt" binding:"required"`
	Location  string           `json:"location"`
	Capacity  *int             `json:"capacity"`
}

func CreateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title, body, topics and expiresAt are required"})
		return
	}

	// Stored text is trimmed; whitespace-only counts as missing.
	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title, body, topics and expiresAt are required"})
		return
	}

	if len(req.Topics) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "At least one topic is required"})
		return
	}
	for _, topic := range req.Topics {
		if !models.ValidTopic(topic) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid topic: " + topic})
			return
		}
	}

	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid expiresAt date"})
		return
	}

	now := time.Now()
	if !expiresAt.After(now) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "expiresAt must be in the future"})
		return
	}

	capacity := models.DefaultCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}

	event := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Body:      body,
		Topics:    req.Topics,
		ExpiresAt: expiresAt,
		Status:    models.StatusLive,
		Location:  req.Location,
		Capacity:  capacity,
		CreatedBy: userID,
		Likes:     []primitive.ObjectID{},
		Dislikes:  []primitive.ObjectID{},
		Attendees: []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := database.Events.InsertOne(ctx, event); err != nil {
		log.Printf("CreateEvent insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while creating event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event (Mingle post) created successfully",
		"event":   event,
	})
}

// listEvents fetches, reconciles and returns events matching filter in
// the given sort order.
func listEvents(c *gin.Context, filter bson.M, sort bson.D) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cursor, err := database.Events.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		log.Printf("listEvents find error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching events"})
		return
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		log.Printf("listEvents decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching events"})
		return
	}

	now := time.Now()
	for i := range events {
		reconcileStatus(ctx, &events[i], now)
	}

	c.JSON(http.StatusOK, events)
}

// GET /api/events?topic=
// Live posts, newest first.
func GetEvents(c *gin.Context) {
	filter := bson.M{"expiresAt": bson.M{"$gt": time.Now()}}
	if topic := c.Query("topic"); topic != "" {
		filter["topics"] = topic
	}
	listEvents(c, filter, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

// GET /api/events/expired?topic=
// Expired posts, most recently expired first.
func GetExpiredEvents(c *gin.Context) {
	filter := bson.M{"expiresAt": bson.M{"$lte": time.Now()}}
	if topic := c.Query("topic"); topic != "" {
		filter["topics"] = topic
	}
	listEvents(c, filter, bson.D{{Key: "expiresAt", Value: -1}, {Key: "_id", Value: -1}})
}

// GET /api/events/:id
func GetEventByID(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var event models.Event
	err := database.Events.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		respondFindError(c, err)
		return
	}

	reconcileStatus(ctx, &event, time.Now())

	c.JSON(http.StatusOK, event)
}

type UpdateEventRequest struct {
	Title     *string           `json:"title"`
	Body      *string           `json:"body"`
	Topics    *models.TopicList `json:"topics"`
	ExpiresAt *string           `json:"expiresAt"`
	Location  *string           `json:"location"`
	Capacity  *int              `json:"capacity"`
}

// PUT /api/events/:id
// Owner-only; live posts only. Applies just the fields present in the
// request, after the whole payload validates.
func UpdateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	now := time.Now()
	set := bson.M{"updatedAt": now}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title cannot be empty"})
			return
		}
		set["title"] = title
	}
	if req.Body != nil {
		body := strings.TrimSpace(*req.Body)
		if body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Message body cannot be empty"})
			return
		}
		set["body"] = body
	}
	if req.Topics != nil {
		if len(*req.Topics) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "At least one topic is required"})
			return
		}
		for _, topic := range *req.Topics {
			if !models.ValidTopic(topic) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid topic: " + topic})
				return
			}
		}
		set["topics"] = *req.Topics
	}
	if req.ExpiresAt != nil {
		expiresAt, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid expiresAt date"})
			return
		}
		set["expiresAt"] = expiresAt
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Capacity != nil {
		set["capacity"] = *req.Capacity
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	filter := bson.M{
		"_id":       id,
		"createdBy": userID,
		"expiresAt": bson.M{"$gt": now},
	}

	event, ok := guardedUpdate(ctx, c, id, filter, bson.M{"$set": set}, func(ev *models.Event) (int, string) {
		if !ev.IsCreator(userID) {
			return http.StatusForbidden, "Not authorized to update this event"
		}
		if ev.IsExpired(now) {
			return http.StatusBadRequest, "Cannot update an expired event"
		}
		return 0, ""
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully",
		"event":   event,
	})
}

// DELETE /api/events/:id
// Owner-only. Expired posts remain deletable.
func DeleteEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	result, err := database.Events.DeleteOne(ctx, bson.M{"_id": id, "createdBy": userID})
	if err != nil {
		log.Printf("DeleteEvent error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while deleting event"})
		return
	}

	if result.DeletedCount == 0 {
		var event models.Event
		err := database.Events.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
		if err != nil {
			respondFindError(c, err)
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// GET /api/events/most-active?topic=
// The single highest-scoring live post for a topic. Evaluation order is
// createdAt descending with _id descending as the secondary key; a tie
// keeps the first event seen in that order.
func GetMostActiveEvent(c *gin.Context) {
	topic := c.Query("topic")
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "topic query parameter is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"topics":    topic,
		"expiresAt": bson.M{"$gt": now},
	}
	sort := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

	cursor, err := database.Events.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		log.Printf("GetMostActiveEvent find error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching most active event"})
		return
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		log.Printf("GetMostActiveEvent decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching most active event"})
		return
	}

	if len(events) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No events found for this topic"})
		return
	}

	for i := range events {
		reconcileStatus(ctx, &events[i], now)
	}

	event, score := models.MostActive(events)

	c.JSON(http.StatusOK, gin.H{
		"topic":         topic,
		"activityScore": score,
		"event":         event,
	})
}
