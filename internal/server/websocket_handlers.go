package server

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"ripple/internal/models"
	"ripple/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedStreamHandler streams feed snapshots over a WebSocket. Every change
// to the post collection pushes a fresh, fully ordered feed.
func (s *Server) FeedStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.ActiveWebSockets.Inc()
		defer observability.ActiveWebSockets.Dec()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub, err := s.feedSync.Subscribe(ctx)
		if err != nil {
			log.Printf("WebSocket feed: subscribe failed: %v", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"subscribe failed"}`))
			_ = conn.Close()
			return
		}
		defer sub.Cancel()

		go watchClose(conn, cancel)

		for {
			select {
			case <-ctx.Done():
				return
			case posts, ok := <-sub.Updates:
				if !ok {
					return
				}
				if !writeSnapshot(conn, "feed", fiber.Map{"posts": posts}) {
					return
				}
			}
		}
	})
}

// CommentStreamHandler streams comment thread snapshots for one post.
// The optional parent_id query switches the stream to that comment's
// replies.
func (s *Server) CommentStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.ActiveWebSockets.Inc()
		defer observability.ActiveWebSockets.Dec()

		postID64, err := strconv.ParseUint(conn.Params("id"), 10, 32)
		if err != nil || postID64 == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid post ID"}`))
			_ = conn.Close()
			return
		}
		postID := uint(postID64)

		var parentID uint
		if raw := conn.Query("parent_id"); raw != "" {
			if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil {
				parentID = uint(parsed)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var sub *subscriptionStream
		if parentID != 0 {
			raw, err := s.commentSync.SubscribeReplies(ctx, postID, parentID)
			if err != nil {
				log.Printf("WebSocket comments: subscribe failed for post %d: %v", postID, err)
				_ = conn.Close()
				return
			}
			sub = &subscriptionStream{updates: raw.Updates, cancel: raw.Cancel, scope: "replies"}
		} else {
			raw, err := s.commentSync.SubscribeTopLevel(ctx, postID)
			if err != nil {
				log.Printf("WebSocket comments: subscribe failed for post %d: %v", postID, err)
				_ = conn.Close()
				return
			}
			sub = &subscriptionStream{updates: raw.Updates, cancel: raw.Cancel, scope: "comments"}
		}
		defer sub.cancel()

		go watchClose(conn, cancel)

		for {
			select {
			case <-ctx.Done():
				return
			case comments, ok := <-sub.updates:
				if !ok {
					return
				}
				if !writeSnapshot(conn, sub.scope, fiber.Map{sub.scope: comments}) {
					return
				}
			}
		}
	})
}

type subscriptionStream struct {
	updates <-chan []models.Comment
	cancel  func()
	scope   string
}

// watchClose drains client frames so close and ping control frames are
// processed, then cancels the stream context when the peer goes away.
func watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, kind string, payload fiber.Map) bool {
	msg, err := json.Marshal(fiber.Map{"type": kind, "data": payload})
	if err != nil {
		log.Printf("WebSocket: marshal snapshot failed: %v", err)
		return false
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return false
	}
	return true
}
