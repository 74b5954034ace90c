package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TimeoSitruk/tupref/models"
	"github.com/TimeoSitruk/tupref/store"
)

// roomIDAlphabet deliberately drops 0/O and 1/I so ids survive being read
// aloud or scribbled on a whiteboard.
const (
	roomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomIDLength   = 6
)

// Display names for players that never introduced themselves, kept from
// the original client protocol.
const (
	defaultHostName    = "Hôte"
	defaultVisitorName = "Invité"
)

// RoomService is the bracket engine: every operation is a read-modify-write
// of one room against the store, serialized per room id.
type RoomService struct {
	rooms store.RoomStore
	log   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRoomService(rooms store.RoomStore, log *zap.Logger) *RoomService {
	return &RoomService{
		rooms: rooms,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// roomLock returns the mutex guarding a single room. Two votes racing on
// the last-needed ballot must not both see "not yet all voted", and two
// concurrent advances must not double-advance, so every operation on a
// room holds its lock across the whole get-compute-put sequence.
func (s *RoomService) roomLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// CreateRoom sets up a fresh bracket over items. When requestedID is blank
// a random id is generated; a requested id that already names a room fails
// with ErrRoomExists.
func (s *RoomService) CreateRoom(ctx context.Context, requestedID string, items []string, creatorID, creatorName string) (*models.Room, error) {
	if len(items) < 2 {
		return nil, fmt.Errorf("%w: need at least two items", ErrInvalidInput)
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return nil, fmt.Errorf("%w: empty item", ErrInvalidInput)
		}
	}

	roomID := strings.TrimSpace(requestedID)
	if roomID == "" {
		roomID = generateRoomID()
	}
	if creatorName == "" {
		creatorName = defaultHostName
	}

	room := &models.Room{
		ID:               roomID,
		CreatorID:        creatorID,
		Players:          []models.Player{{ID: creatorID, Name: creatorName}},
		Items:            items,
		Pairs:            makePairs(items),
		PairIndex:        0,
		Votes:            make(map[int][]models.Ballot),
		NextRoundPlayers: []string{},
		RoundNumber:      1,
		Finished:         false,
		Ready:            false,
		UpdatedAt:        now(),
	}

	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.rooms.Create(ctx, roomID, room); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrRoomExists
		}
		return nil, err
	}

	s.log.Info("room created",
		zap.String("roomId", roomID),
		zap.String("creatorId", creatorID),
		zap.Int("items", len(items)),
		zap.Int("pairs", len(room.Pairs)))
	return room, nil
}

// JoinRoom adds a player, or refreshes the stored name of a returning one.
// Re-joining with the same id never duplicates the player.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, playerID, playerName string) (*models.Room, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	joined := false
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			// An empty name keeps the one we already have.
			if playerName != "" {
				room.Players[i].Name = playerName
			}
			joined = true
			break
		}
	}
	if !joined {
		if playerName == "" {
			playerName = defaultVisitorName
		}
		room.Players = append(room.Players, models.Player{ID: playerID, Name: playerName})
		s.log.Info("player joined",
			zap.String("roomId", roomID),
			zap.String("playerId", playerID))
	}

	room.UpdatedAt = now()
	if err := s.rooms.Put(ctx, roomID, room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetState returns the current room snapshot without mutating anything.
func (s *RoomService) GetState(ctx context.Context, roomID string) (*models.Room, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	return s.getRoom(ctx, roomID)
}

// CastVote records a player's choice for the currently open pair. The last
// vote of a player wins; there is no lock against revoting. When every
// distinct player has voted the pair is decided: the majority choice is
// appended to the next round and the room waits for the creator to advance.
func (s *RoomService) CastVote(ctx context.Context, roomID, playerID, choice string) (*models.Room, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Finished {
		return nil, ErrRoomFinished
	}

	recordBallot(room, playerID, choice)
	room.UpdatedAt = now()

	// A pair decides at most once. Votes landing after the decision are
	// recorded but never re-tallied, so each pair contributes exactly one
	// winner to the next round.
	if !room.Ready && allVoted(room) {
		winner := tally(room.CurrentBallots())
		room.NextRoundPlayers = append(room.NextRoundPlayers, winner)
		room.Ready = true
		s.log.Info("pair decided",
			zap.String("roomId", roomID),
			zap.Int("pairIndex", room.PairIndex),
			zap.String("winner", winner))
	}

	if err := s.rooms.Put(ctx, roomID, room); err != nil {
		return nil, err
	}
	return room, nil
}

// AdvanceRound moves the room past the decided pair. Only the creator may
// advance, and only while the room is ready. When the round is exhausted
// the survivors seed the next round, or the room finishes if at most one
// remains.
func (s *RoomService) AdvanceRound(ctx context.Context, roomID, callerID string) (*models.Room, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != callerID {
		return nil, ErrForbidden
	}
	if !room.Ready {
		return nil, ErrNotReady
	}

	room.PairIndex++
	room.Ready = false

	if room.PairIndex >= len(room.Pairs) {
		if len(room.NextRoundPlayers) <= 1 {
			room.Finished = true
			s.log.Info("bracket finished",
				zap.String("roomId", roomID),
				zap.Int("rounds", room.RoundNumber),
				zap.Strings("survivors", room.NextRoundPlayers))
		} else {
			room.RoundNumber++
			room.Pairs = makePairs(room.NextRoundPlayers)
			room.PairIndex = 0
			room.NextRoundPlayers = []string{}
			room.Votes = make(map[int][]models.Ballot)
			s.log.Info("round started",
				zap.String("roomId", roomID),
				zap.Int("round", room.RoundNumber),
				zap.Int("pairs", len(room.Pairs)))
		}
	}

	settleBye(room)

	room.UpdatedAt = now()
	if err := s.rooms.Put(ctx, roomID, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) getRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// makePairs splits contestants into consecutive pairs in original order.
// An odd count leaves the final pair without a second slot.
func makePairs(contestants []string) []models.Pair {
	pairs := make([]models.Pair, 0, (len(contestants)+1)/2)
	for i := 0; i < len(contestants); i += 2 {
		pair := models.Pair{A: contestants[i]}
		if i+1 < len(contestants) {
			b := contestants[i+1]
			pair.B = &b
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// recordBallot stores the player's choice for the open pair, replacing any
// earlier vote in place so ballot order stays stable across revotes.
func recordBallot(room *models.Room, playerID, choice string) {
	ballots := room.Votes[room.PairIndex]
	for i := range ballots {
		if ballots[i].PlayerID == playerID {
			ballots[i].Choice = choice
			return
		}
	}
	room.Votes[room.PairIndex] = append(ballots, models.Ballot{PlayerID: playerID, Choice: choice})
}

// allVoted reports whether every distinct non-empty player id has a ballot
// for the open pair. Fewer than two distinct players can never decide a
// pair, so a lone creator cannot vote a bracket through on their own.
func allVoted(room *models.Room) bool {
	seen := make(map[string]bool)
	distinct := 0
	for _, p := range room.Players {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		distinct++
	}
	if distinct < 2 {
		return false
	}

	voted := make(map[string]bool)
	for _, b := range room.CurrentBallots() {
		voted[b.PlayerID] = true
	}
	for id := range seen {
		if !voted[id] {
			return false
		}
	}
	return true
}

// tally picks the choice with the strictly highest vote count. Ties go to
// the choice whose first supporting ballot landed earliest; that policy is
// part of the contract and pinned by tests.
func tally(ballots []models.Ballot) string {
	counts := make(map[string]int)
	var order []string
	for _, b := range ballots {
		if _, seen := counts[b.Choice]; !seen {
			order = append(order, b.Choice)
		}
		counts[b.Choice]++
	}

	winner := ""
	max := -1
	for _, choice := range order {
		if counts[choice] > max {
			max = counts[choice]
			winner = choice
		}
	}
	return winner
}

// settleBye auto-advances a lone contestant: a pair with no opponent needs
// no vote, its item goes straight to the next round and the room is ready
// for the creator to move on. Byes only ever occur as the last pair of an
// odd-sized round.
func settleBye(room *models.Room) {
	if room.Finished || room.PairIndex >= len(room.Pairs) {
		return
	}
	pair := room.Pairs[room.PairIndex]
	if !pair.IsBye() {
		return
	}
	room.NextRoundPlayers = append(room.NextRoundPlayers, pair.A)
	room.Ready = true
}

func generateRoomID() string {
	buf := make([]byte, roomIDLength)
	rand.Read(buf)
	id := make([]byte, roomIDLength)
	for i, b := range buf {
		id[i] = roomIDAlphabet[int(b)%len(roomIDAlphabet)]
	}
	return string(id)
}

func now() int64 {
	return time.Now().UnixMilli()
}
