package service

import (
	"context"
	"time"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
)

// WordView is the read shape returned to the HTTP layer: the entry with its
// final coordinate, derived placement, and resolved avatar URL.
type WordView struct {
	ID          string    `json:"id"`
	Term        string    `json:"term"`
	DisplayName string    `json:"username"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	LayerIndex  *int      `json:"layerIndex"`
	SlotIndex   *int      `json:"slotIndex"`
	Angle       *float64  `json:"angle,omitempty"`
	Radius      *float64  `json:"radius,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// view renders one entry. Avatar URL resolution failures are logged and
// leave the field empty; they never fail the request.
func (s *Service) view(ctx context.Context, e word.Entry) WordView {
	v := WordView{
		ID:          e.ID,
		Term:        e.Term,
		DisplayName: e.DisplayName,
		CreatedAt:   e.CreatedAt,
	}
	if e.Positioned() {
		layer, slot := e.Position.Layer, e.Position.Slot
		v.LayerIndex, v.SlotIndex = &layer, &slot
		placement := s.mapper.Place(s.plan, *e.Position)
		v.Angle, v.Radius = &placement.Angle, &placement.Radius
	}
	if e.AvatarRef != "" {
		url, err := s.blobs.URL(ctx, e.AvatarRef)
		if err != nil {
			s.logger.Warn(ctx, "avatar URL resolution failed",
				logger.String("id", e.ID),
				logger.String("ref", e.AvatarRef),
				logger.Error(err),
			)
		} else {
			v.AvatarURL = url
		}
	}
	return v
}

func (s *Service) views(ctx context.Context, entries []word.Entry) []WordView {
	out := make([]WordView, len(entries))
	for i, e := range entries {
		out[i] = s.view(ctx, e)
	}
	return out
}
