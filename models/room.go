package models

// Room is one bracket-voting session. The JSON field names are part of the
// wire contract and must not change.
type Room struct {
	ID               string           `json:"id"`
	CreatorID        string           `json:"creatorId"`
	Players          []Player         `json:"players"`
	Items            []string         `json:"items"`
	Pairs            []Pair           `json:"pairs"`
	PairIndex        int              `json:"pairIndex"`
	Votes            map[int][]Ballot `json:"votes"`
	NextRoundPlayers []string         `json:"nextRoundPlayers"`
	RoundNumber      int              `json:"roundNumber"`
	Finished         bool             `json:"finished"`
	Ready            bool             `json:"ready"`
	UpdatedAt        int64            `json:"updatedAt"` // epoch millis
}

// Pair is one matchup of the current round. B is nil when the round had an
// odd number of contestants and this slot got no opponent (a bye).
type Pair struct {
	A string  `json:"a"`
	B *string `json:"b"`
}

// IsBye reports whether the pair has no second contestant.
func (p Pair) IsBye() bool {
	return p.B == nil
}

// Ballot records one player's choice for the currently open pair. Ballots
// for a pair are kept in the order the first vote of each player landed;
// a revote replaces the choice in place, so the order is stable. The vote
// tally depends on that order for tie-breaking.
type Ballot struct {
	PlayerID string `json:"playerId"`
	Choice   string `json:"choice"`
}

// CurrentBallots returns the ballot box of the currently open pair.
func (r *Room) CurrentBallots() []Ballot {
	return r.Votes[r.PairIndex]
}

// Clone returns a deep copy sharing no memory with the receiver. Stores
// that keep rooms in process memory hand out clones so a caller's snapshot
// stays stable while the engine mutates the room behind its lock.
func (r *Room) Clone() *Room {
	clone := *r

	clone.Players = append([]Player(nil), r.Players...)
	clone.Items = append([]string(nil), r.Items...)
	clone.NextRoundPlayers = append([]string(nil), r.NextRoundPlayers...)

	clone.Pairs = make([]Pair, len(r.Pairs))
	for i, pair := range r.Pairs {
		clone.Pairs[i] = Pair{A: pair.A}
		if pair.B != nil {
			b := *pair.B
			clone.Pairs[i].B = &b
		}
	}

	if r.Votes != nil {
		clone.Votes = make(map[int][]Ballot, len(r.Votes))
		for idx, ballots := range r.Votes {
			clone.Votes[idx] = append([]Ballot(nil), ballots...)
		}
	}

	return &clone
}
