package game

// Action types are the first byte of every client request; the rest is the encoded payload.
const (
	MoveActionType byte = 1 << iota
	StateRequestActionType
	PauseActionType
	ResumeActionType
)

// Action is a movement request for one actor.
type Action struct {
	ActorID   string `json:"actor_id"`
	Direction string `json:"direction"`
	SentAt    int64  `json:"sent_at"` // Unix milliseconds on the client, informational only.
}

// WinnerRecord is handed to the presentation layer when a game ends with a winner.
type WinnerRecord struct {
	WinnerID    string `json:"winner_id"`
	WinnerName  string `json:"winner_name"`
	WinnerScore int    `json:"winner_score"`
}

// Snapshot is the serializable view of a game broadcast to clients after each change.
type Snapshot struct {
	Version     int64         `json:"version"`
	Status      string        `json:"status"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	TargetScore int           `json:"target_score"`
	Players     []Actor       `json:"players"`
	Coins       []Coin        `json:"coins"`
	Enemies     []Enemy       `json:"enemies"`
	Bombs       []Bomb        `json:"bombs"`
	Winner      *WinnerRecord `json:"winner,omitempty"`
}

// Event is the flat wire form of a collision or an update.
type Event struct {
	Kind        string   `json:"kind"`
	PlayerID    string   `json:"player_id,omitempty"`
	OtherID     string   `json:"other_id,omitempty"`
	EntityID    string   `json:"entity_id,omitempty"`
	EntityType  string   `json:"entity_type,omitempty"`
	X           int      `json:"x"`
	Y           int      `json:"y"`
	Value       int      `json:"value,omitempty"`
	Damage      int      `json:"damage,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Contested   bool     `json:"contested,omitempty"`
	Contestants []string `json:"contestants,omitempty"`
}

// EventBatch is what happened during one tick, in evaluation order.
type EventBatch struct {
	Version    int64   `json:"version"`
	Collisions []Event `json:"collisions"`
	Updates    []Event `json:"updates"`
}

// Encoder serializes the messages exchanged with clients.
type Encoder interface {
	MarshalGameState(Snapshot) ([]byte, error)
	UnmarshalGameState([]byte) (Snapshot, error)
	MarshalEvents(EventBatch) ([]byte, error)
	UnmarshalEvents([]byte) (EventBatch, error)
	MarshalAction(Action) ([]byte, error)
	UnmarshalAction([]byte) (Action, error)
}
