package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/colearn-app/colearn-api/ai"
	"github.com/colearn-app/colearn-api/arena"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/gamification"
	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

const (
	duelQuestionCount = 7
	leaderboardSize   = 20
	historyLimit      = 20
	defaultDuelLevel  = "medium"
	defaultBossLevel  = "normal"
)

type ArenaHandlers struct {
	db          *db.DB
	ai          *ai.Client
	battles     *arena.BattleStore
	leaderboard *arena.Leaderboard

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewArenaHandlers(database *db.DB, aiClient *ai.Client, battles *arena.BattleStore, leaderboard *arena.Leaderboard) *ArenaHandlers {
	return &ArenaHandlers{
		db:          database,
		ai:          aiClient,
		battles:     battles,
		leaderboard: leaderboard,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (arh *ArenaHandlers) HandleArena(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/arena/")
	parts := strings.Split(path, "/")

	switch {
	case path == "profile" && r.Method == http.MethodGet:
		arh.getProfile(w, r)
	case path == "leaderboard" && r.Method == http.MethodGet:
		arh.getLeaderboard(w, r)
	case path == "duels" && r.Method == http.MethodPost:
		arh.startDuel(w, r)
	case path == "duels/history" && r.Method == http.MethodGet:
		arh.duelHistory(w, r)
	case len(parts) == 2 && parts[0] == "duels" && r.Method == http.MethodGet:
		arh.getDuel(w, r, parts[1])
	case len(parts) == 3 && parts[0] == "duels" && parts[2] == "answer" && r.Method == http.MethodPost:
		arh.answerDuel(w, r, parts[1])
	case path == "boss" && r.Method == http.MethodPost:
		arh.startBossFight(w, r)
	case path == "boss/history" && r.Method == http.MethodGet:
		arh.bossHistory(w, r)
	case len(parts) == 2 && parts[0] == "boss" && r.Method == http.MethodGet:
		arh.getBossFight(w, r, parts[1])
	case len(parts) == 3 && parts[0] == "boss" && parts[2] == "message" && r.Method == http.MethodPost:
		arh.bossMessage(w, r, parts[1])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (arh *ArenaHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())

	profile, err := arh.db.GetArenaProfile(session.UserID)
	if err != nil {
		utils.LogError("Failed to load arena profile for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// getLeaderboard serves the top arena ratings from the redis cache,
// falling back to a SQL scan when the cache is down.
func (arh *ArenaHandlers) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	ranks, err := arh.leaderboard.Top(r.Context(), leaderboardSize)
	if err == nil {
		ids := make([]int, len(ranks))
		for i, rank := range ranks {
			ids[i] = rank.UserID
		}
		names, nameErr := arh.db.GetUsernames(ids)
		if nameErr == nil {
			for i := range ranks {
				ranks[i].Username = names[ranks[i].UserID]
			}
			writeJSON(w, http.StatusOK, ranks)
			return
		}
		err = nameErr
	}

	if err != arena.ErrLeaderboardUnavailable {
		utils.LogError("Leaderboard cache read failed, falling back to SQL: %v", err)
	}

	ranks, err = arh.db.TopArenaProfiles(leaderboardSize)
	if err != nil {
		utils.LogError("Leaderboard SQL fallback failed: %v", err)
		http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ranks)
}

func (arh *ArenaHandlers) startDuel(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	utils.LogArena("POST /arena/duels (user %d)", session.UserID)

	var req models.StartDuelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		http.Error(w, "Missing topic", http.StatusBadRequest)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = defaultDuelLevel
	}

	questions, err := arh.ai.GenerateDuelQuestions(r.Context(), req.Topic, duelQuestionCount)
	if err != nil {
		utils.LogError("Duel question generation failed: %v", err)
		http.Error(w, "Question generation failed", http.StatusBadGateway)
		return
	}

	duel, err := arena.NewDuel(session.UserID, req.Topic, req.Difficulty, questions)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	arh.battles.PutDuel(duel)

	utils.LogArena("Duel %s started: user %d vs %s on %q", duel.ID, session.UserID, duel.AIName, duel.Topic)
	writeJSON(w, http.StatusCreated, duel)
}

func (arh *ArenaHandlers) getDuel(w http.ResponseWriter, r *http.Request, duelID string) {
	session := getSessionFromContext(r.Context())

	duel, ok := arh.battles.GetDuel(duelID, session.UserID)
	if !ok {
		http.Error(w, "Duel not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, duel)
}

func (arh *ArenaHandlers) answerDuel(w http.ResponseWriter, r *http.Request, duelID string) {
	session := getSessionFromContext(r.Context())

	var req models.DuelAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	duel, ok := arh.battles.GetDuel(duelID, session.UserID)
	if !ok {
		http.Error(w, "Duel not found", http.StatusNotFound)
		return
	}

	arh.rngMu.Lock()
	result, err := arena.ResolveAnswer(duel, req.Answer, time.Duration(req.TimeMs)*time.Millisecond, arh.rng)
	arh.rngMu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	resp := map[string]interface{}{
		"result": result,
		"duel":   duel,
	}

	if duel.Status == models.DuelFinished {
		won := arena.PlayerWon(duel)
		utils.LogArena("Duel %s finished: user %d %s (%d-%d)", duel.ID, session.UserID,
			map[bool]string{true: "won", false: "lost"}[won], duel.PlayerScore, duel.AIScore)

		profile, err := arh.db.GetArenaProfile(session.UserID)
		if err != nil {
			utils.LogError("Failed to load arena profile for user %d: %v", session.UserID, err)
			http.Error(w, "Failed to load profile", http.StatusInternalServerError)
			return
		}
		arena.ApplyDuelOutcome(profile, won)
		if err := arh.db.SaveArenaProfile(profile); err != nil {
			utils.LogError("Failed to save arena profile for user %d: %v", session.UserID, err)
			http.Error(w, "Failed to save profile", http.StatusInternalServerError)
			return
		}
		arh.leaderboard.Update(r.Context(), profile.UserID, profile.ArenaRating)

		if err := arh.db.SaveDuel(duel); err != nil {
			utils.LogError("Failed to save duel %s: %v", duel.ID, err)
		}
		arh.battles.RemoveDuel(duel.ID)

		resp["profile"] = profile

		if won {
			record, err := arh.db.GetGamification(session.UserID)
			if err == nil {
				event := gamification.AwardDuelWin(record, time.Now())
				if err := arh.db.SaveGamification(record); err != nil {
					utils.LogError("Failed to save gamification for user %d: %v", session.UserID, err)
				} else {
					resp["xp_event"] = event
				}
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (arh *ArenaHandlers) duelHistory(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())

	history, err := arh.db.GetDuelHistory(session.UserID, historyLimit)
	if err != nil {
		utils.LogError("Failed to load duel history for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (arh *ArenaHandlers) startBossFight(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	utils.LogArena("POST /arena/boss (user %d)", session.UserID)

	var req models.StartBossRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		http.Error(w, "Missing topic", http.StatusBadRequest)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = defaultBossLevel
	}

	cfg, ok := arena.BossConfigs[req.Difficulty]
	if !ok {
		http.Error(w, "Unknown difficulty", http.StatusBadRequest)
		return
	}

	intro, err := arh.ai.GenerateBossIntro(r.Context(), req.Topic, req.Difficulty, cfg.Name)
	if err != nil {
		utils.LogError("Boss intro generation failed: %v", err)
		http.Error(w, "Boss generation failed", http.StatusBadGateway)
		return
	}

	fight, err := arena.NewBossFight(session.UserID, req.Topic, req.Difficulty, intro)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	arh.battles.PutBossFight(fight)

	utils.LogArena("Boss fight %s started: user %d vs %s on %q", fight.ID, session.UserID, fight.BossName, fight.Topic)
	writeJSON(w, http.StatusCreated, fight)
}

func (arh *ArenaHandlers) getBossFight(w http.ResponseWriter, r *http.Request, fightID string) {
	session := getSessionFromContext(r.Context())

	fight, ok := arh.battles.GetBossFight(fightID, session.UserID)
	if !ok {
		http.Error(w, "Boss fight not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, fight)
}

// bossMessage runs one round: the AI judges the player's answer, both
// sides take damage, and the fight settles on victory or defeat. If
// the AI call fails the fight state is untouched and the player can
// retry the same answer.
func (arh *ArenaHandlers) bossMessage(w http.ResponseWriter, r *http.Request, fightID string) {
	session := getSessionFromContext(r.Context())

	var req models.BossMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Missing message", http.StatusBadRequest)
		return
	}

	fight, ok := arh.battles.GetBossFight(fightID, session.UserID)
	if !ok {
		http.Error(w, "Boss fight not found", http.StatusNotFound)
		return
	}
	if fight.Status != models.BossInProgress {
		http.Error(w, "Boss fight already finished", http.StatusConflict)
		return
	}

	turn, err := arh.ai.GenerateBossTurn(r.Context(), fight.Topic, fight.Difficulty, fight.BossName, fight.Messages, req.Message)
	if err != nil {
		utils.LogError("Boss turn generation failed: %v", err)
		http.Error(w, "Boss unavailable, try again", http.StatusBadGateway)
		return
	}

	arena.AddPlayerMessage(fight, req.Message)
	if err := arena.ApplyBossTurn(fight, turn.Response, turn.PlayerDamage, turn.BossDamage); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	resp := map[string]interface{}{
		"fight": fight,
	}

	if fight.Status != models.BossInProgress {
		utils.LogArena("Boss fight %s finished: user %d %s against %s", fight.ID, session.UserID, fight.Status, fight.BossName)

		if fight.Status == models.BossVictory {
			profile, err := arh.db.GetArenaProfile(session.UserID)
			if err == nil {
				profile.BossesDefeated++
				if err := arh.db.SaveArenaProfile(profile); err != nil {
					utils.LogError("Failed to save arena profile for user %d: %v", session.UserID, err)
				}
				resp["profile"] = profile
			}

			record, err := arh.db.GetGamification(session.UserID)
			if err == nil {
				event := gamification.AwardBossDefeat(record, fight.Difficulty, time.Now())
				if err := arh.db.SaveGamification(record); err != nil {
					utils.LogError("Failed to save gamification for user %d: %v", session.UserID, err)
				} else {
					resp["xp_event"] = event
				}
			}
		}

		if err := arh.db.SaveBossFight(fight); err != nil {
			utils.LogError("Failed to save boss fight %s: %v", fight.ID, err)
		}
		arh.battles.RemoveBossFight(fight.ID)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (arh *ArenaHandlers) bossHistory(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())

	history, err := arh.db.GetBossFightHistory(session.UserID, historyLimit)
	if err != nil {
		utils.LogError("Failed to load boss history for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, history)
}
