package roster

import "time"

// Player is one row of the alliance roster, keyed by the player's chat
// user id. Rows are created from completed intake submissions or by an
// admin through the dashboard API.
type Player struct {
	ID          string    `json:"id"`
	DiscordName string    `json:"discordName"`
	Nickname    string    `json:"nickname"`
	IngameID    string    `json:"ingameId"`
	Kingdom     string    `json:"kingdom"`
	Power       int64     `json:"power"`
	KP          int64     `json:"kp"`
	Deaths      int64     `json:"deaths"`
	TotalPoints int64     `json:"totalPoints"`
	CanMigrate  string    `json:"canMigrate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Screenshot struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"playerId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	Description  string    `json:"description"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

type Stats struct {
	TotalPlayers     int     `json:"totalPlayers"`
	TotalScreenshots int     `json:"totalScreenshots"`
	AveragePower     float64 `json:"averagePower"`
	AverageKP        float64 `json:"averageKp"`
}
