package models

import (
	"time"

	"github.com/google/uuid"
)

type BadgeID string

const (
	BadgeFirstCall BadgeID = "first_call"
	BadgeOnARoll   BadgeID = "on_a_roll"
	BadgeHotStreak BadgeID = "hot_streak"
	BadgeProphet   BadgeID = "prophet"
	BadgeSharpEye  BadgeID = "sharp_eye"
	BadgeInsider   BadgeID = "insider"
	BadgeOracle    BadgeID = "oracle"
	BadgeRegular   BadgeID = "regular"
	BadgeAnalyst   BadgeID = "analyst"
	BadgeHistorian BadgeID = "historian"
	BadgeIronFan   BadgeID = "iron_fan"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeFirstCall: {ID: BadgeFirstCall, Name: "First Call", Description: "Resolve your first prediction", Icon: "🎤"},
	BadgeOnARoll:   {ID: BadgeOnARoll, Name: "On a Roll", Description: "5 correct predictions in a row", Icon: "🔥"},
	BadgeHotStreak: {ID: BadgeHotStreak, Name: "Hot Streak", Description: "10 correct predictions in a row", Icon: "⚡"},
	BadgeProphet:   {ID: BadgeProphet, Name: "Prophet", Description: "25 correct predictions in a row", Icon: "🔮"},
	BadgeSharpEye:  {ID: BadgeSharpEye, Name: "Sharp Eye", Description: "80%+ accuracy over 10+ predictions", Icon: "🎯"},
	BadgeInsider:   {ID: BadgeInsider, Name: "Insider", Description: "90%+ accuracy over 10+ predictions", Icon: "🕶️"},
	BadgeOracle:    {ID: BadgeOracle, Name: "Oracle", Description: "95%+ accuracy over 10+ predictions", Icon: "👁️"},
	BadgeRegular:   {ID: BadgeRegular, Name: "Regular", Description: "10 resolved predictions", Icon: "🎟️"},
	BadgeAnalyst:   {ID: BadgeAnalyst, Name: "Analyst", Description: "50 resolved predictions", Icon: "📊"},
	BadgeHistorian: {ID: BadgeHistorian, Name: "Historian", Description: "100 resolved predictions", Icon: "📚"},
	BadgeIronFan:   {ID: BadgeIronFan, Name: "Iron Fan", Description: "500 resolved predictions", Icon: "🏆"},
}

// UserBadge records a badge a user has unlocked. Rows are only ever
// inserted, never deleted; an unlocked badge stays unlocked.
type UserBadge struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"size:255;not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID    BadgeID   `gorm:"size:50;not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	UnlockedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"unlocked_at"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
