package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mingle/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// Votes are mutually exclusive and not idempotent: a second like by the
// same user is an error, and liking removes any standing dislike. Both
// effects happen in one atomic update so concurrent voters never lose
// writes.

// POST /api/events/:id/like
func LikeEvent(c *gin.Context) {
	voteEvent(c, "likes", "dislikes", "Post liked",
		"Creators cannot like their own posts",
		"Cannot like an expired event",
		"You already liked this post")
}

// POST /api/events/:id/dislike
func DislikeEvent(c *gin.Context) {
	voteEvent(c, "dislikes", "likes", "Post disliked",
		"Creators cannot dislike their own posts",
		"Cannot dislike an expired event",
		"You already disliked this post")
}

func voteEvent(c *gin.Context, addField, removeField, successMsg, selfMsg, expiredMsg, duplicateMsg string) {
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

	now := time.Now()
	filter := bson.M{
		"_id":       id,
		"createdBy": bson.M{"$ne": userID},
		"expiresAt": bson.M{"$gt": now},
		addField:    bson.M{"$ne": userID},
	}
	update := bson.M{
		"$pull":     bson.M{removeField: userID},
		"$addToSet": bson.M{addField: userID},
		"$set":      bson.M{"updatedAt": now},
	}

	event, ok := guardedUpdate(ctx, c, id, filter, update, func(ev *models.Event) (int, string) {
		if ev.IsCreator(userID) {
			return http.StatusBadRequest, selfMsg
		}
		if ev.IsExpired(now) {
			return http.StatusBadRequest, expiredMsg
		}
		if addField == "likes" && ev.HasLiked(userID) || addField == "dislikes" && ev.HasDisliked(userID) {
			return http.StatusBadRequest, duplicateMsg
		}
		return 0, ""
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": successMsg, "event": event})
}

type CommentRequest struct {
	Text string `json:"text"`
}

// POST /api/events/:id/comment
// Comments are append-only; they are never edited, deleted or
// reordered.
func CommentOnEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment text is required"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment text is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"_id":       id,
		"expiresAt": bson.M{"$gt": now},
	}
	update := bson.M{
		"$push": bson.M{"comments": models.Comment{User: userID, Text: text, CreatedAt: now}},
		"$set":  bson.M{"updatedAt": now},
	}

	event, ok := guardedUpdate(ctx, c, id, filter, update, func(ev *models.Event) (int, string) {
		if ev.IsExpired(now) {
			return http.StatusBadRequest, "Cannot comment on an expired event"
		}
		return 0, ""
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment added", "event": event})
}

// POST /api/events/:id/attend
// Attendance has no expiry gate and no creator exclusion; it is only
// bounded by capacity and idempotence. The capacity check rides in the
// update filter, so concurrent attendees racing for the last slot
// resolve to exactly one winner.
func AttendEvent(c *gin.Context) {
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

	// capacity <= 0 means unbounded
	filter := bson.M{
		"_id":       id,
		"attendees": bson.M{"$ne": userID},
		"$or": bson.A{
			bson.M{"capacity": bson.M{"$not": bson.M{"$gt": 0}}},
			bson.M{"$expr": bson.M{"$lt": bson.A{
				bson.M{"$size": bson.M{"$ifNull": bson.A{"$attendees", bson.A{}}}},
				"$capacity",
			}}},
		},
	}
	update := bson.M{
		"$push": bson.M{"attendees": userID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	event, ok := guardedUpdate(ctx, c, id, filter, update, func(ev *models.Event) (int, string) {
		if ev.IsAttending(userID) {
			return http.StatusBadRequest, "You are already attending this event"
		}
		if ev.IsFull() {
			return http.StatusBadRequest, "Event is full"
		}
		return 0, ""
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You are now attending this event", "event": event})
}
