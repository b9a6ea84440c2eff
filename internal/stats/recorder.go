package stats

import (
	"context"
	"fmt"
	"log"

	"github.com/pefman/gesture-duel/internal/models"
)

// Recorder hands finished battles to a Store. It never fails its caller:
// store errors and panics are logged and swallowed.
type Recorder struct {
	Store Store
	Daily *Daily
}

func NewRecorder(store Store, daily *Daily) *Recorder {
	return &Recorder{Store: store, Daily: daily}
}

func (r *Recorder) Record(ctx context.Context, o models.MatchOutcome) {
	if r.Daily != nil {
		r.Daily.Add(o)
	}
	if r.Store == nil {
		return
	}
	rec := models.RecordFromOutcome(o)
	if err := r.safeAppend(ctx, rec); err != nil {
		log.Printf("stats: failed to save battle player=%s opponent=%s result=%s: %v", rec.Player, rec.Opponent, rec.Result, err)
		return
	}
	log.Printf("stats: saved battle player=%s opponent=%s result=%s tod=%s", rec.Player, rec.Opponent, rec.Result, rec.TimeOfDay)
}

func (r *Recorder) safeAppend(ctx context.Context, rec models.BattleRecord) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("store panic: %v", p)
		}
	}()
	return r.Store.Append(ctx, rec)
}
