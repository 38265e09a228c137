package collision

// CollisionKind names a collision record variant.
type CollisionKind string

// Collision kinds.
const (
	KindOverlap CollisionKind = "overlap"
	KindCoin    CollisionKind = "coin"
	KindEnemy   CollisionKind = "enemy"
	KindBomb    CollisionKind = "bomb"
)

// UpdateKind names a state mutation directive.
type UpdateKind string

// Update kinds.
const (
	UpdateCoinCollected UpdateKind = "coin_collected"
	UpdateBombExploded  UpdateKind = "bomb_exploded"
)

// Collision is one of OverlapCollision, CoinCollision, EnemyCollision or BombCollision.
type Collision interface {
	Kind() CollisionKind
	isCollision()
}

// Update is one of CoinCollected or BombExploded.
type Update interface {
	Kind() UpdateKind
	isUpdate()
}

// OverlapCollision is two actors sharing a cell. Actors never block each other.
type OverlapCollision struct {
	PlayerID      string
	OtherPlayerID string
	X, Y          int
}

// CoinCollision is a coin pickup, possibly decided between several contestants.
type CoinCollision struct {
	PlayerID    string
	CoinID      string
	CoinType    string
	Value       int
	X, Y        int
	Priority    int
	Contested   bool
	Contestants []string
}

// EnemyCollision is damage dealt by an enemy.
type EnemyCollision struct {
	PlayerID string
	EnemyID  string
	Damage   int
	X, Y     int
}

// BombCollision is damage dealt by an exploding bomb.
type BombCollision struct {
	PlayerID string
	BombID   string
	Damage   int
	X, Y     int
}

func (OverlapCollision) Kind() CollisionKind { return KindOverlap }
func (CoinCollision) Kind() CollisionKind    { return KindCoin }
func (EnemyCollision) Kind() CollisionKind   { return KindEnemy }
func (BombCollision) Kind() CollisionKind    { return KindBomb }

func (OverlapCollision) isCollision() {}
func (CoinCollision) isCollision()    {}
func (EnemyCollision) isCollision()   {}
func (BombCollision) isCollision()    {}

// CoinCollected tells the orchestrator to credit a coin to a player.
type CoinCollected struct {
	PlayerID string
	CoinID   string
	CoinType string
	Value    int
}

// BombExploded tells the orchestrator a bomb is gone.
type BombExploded struct {
	BombID      string
	TriggeredBy string
	X, Y        int
}

func (CoinCollected) Kind() UpdateKind { return UpdateCoinCollected }
func (BombExploded) Kind() UpdateKind  { return UpdateBombExploded }

func (CoinCollected) isUpdate() {}
func (BombExploded) isUpdate()  {}

// Result is the output of one resolution pass. Both slices are non-nil.
type Result struct {
	Collisions []Collision
	Updates    []Update
}

// Empty reports whether nothing happened during the pass.
func (r Result) Empty() bool {
	return len(r.Collisions) == 0 && len(r.Updates) == 0
}

func emptyResult() Result {
	return Result{Collisions: []Collision{}, Updates: []Update{}}
}
