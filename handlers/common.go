package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"mingle/database"
	"mingle/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dbTimeout = 10 * time.Second

// currentUserID resolves the authenticated user set by the JWT
// middleware. Core operations always take the identity explicitly;
// nothing below the handler layer reads it from ambient state.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorised"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// eventIDParam parses the :id route parameter. A malformed id can never
// name an event, so it reads as not found.
func eventIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// reconcileStatus persists the Live -> Expired flip for an event whose
// cached status went stale. Every read path calls this before handing
// the event to a caller, so a logically expired event is never observed
// still marked Live. This is the one write permitted after expiry.
func reconcileStatus(ctx context.Context, ev *models.Event, now time.Time) {
	if !ev.RefreshStatus(now) {
		return
	}
	_, err := database.Events.UpdateOne(
		ctx,
		bson.M{"_id": ev.ID, "status": models.StatusLive},
		bson.M{"$set": bson.M{"status": models.StatusExpired}},
	)
	if err != nil {
		// The response already carries the corrected status; the next
		// read retries the persist.
		log.Printf("reconcileStatus update error: %v", err)
	}
}

// respondFindError maps a FindOne failure to 404 or 500.
func respondFindError(c *gin.Context, err error) {
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	log.Printf("find event error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error"})
}

// guardedUpdate applies one precondition-filtered atomic update against
// the events collection and returns the updated document. The filter
// must include the event id and encode every precondition of the
// operation, so the store stays the sole synchronization point.
//
// When the filter matches nothing the event is re-read and diagnose is
// asked to name the violated precondition (returning an HTTP status and
// message, or 0 when it finds none). A clean diagnosis means the state
// moved between the two reads, and the attempt is retried.
func guardedUpdate(ctx context.Context, c *gin.Context, id primitive.ObjectID, filter, update bson.M, diagnose func(*models.Event) (int, string)) (*models.Event, bool) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < 3; attempt++ {
		var ev models.Event
		err := database.Events.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ev)
		if err == nil {
			return &ev, true
		}
		if err != mongo.ErrNoDocuments {
			log.Printf("guardedUpdate error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error"})
			return nil, false
		}

		var current models.Event
		err = database.Events.FindOne(ctx, bson.M{"_id": id}).Decode(&current)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
			return nil, false
		}
		if err != nil {
			log.Printf("guardedUpdate diagnose error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error"})
			return nil, false
		}

		if status, msg := diagnose(&current); status != 0 {
			c.JSON(status, gin.H{"message": msg})
			return nil, false
		}
	}

	c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error"})
	return nil, false
}
