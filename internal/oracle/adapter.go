// internal/oracle/adapter.go
package oracle

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/common/metrics"
	"travelease/internal/common/observability"
	"travelease/internal/common/validation"
	"travelease/internal/models"
)

// Fallback reasons, also used as metric labels.
const (
	ReasonDisabled       = "oracle_disabled"
	ReasonEmpty          = "empty_shortlists"
	ReasonFailed         = "oracle_failed"
	ReasonMalformed      = "malformed_answer"
	ReasonFewInspections = "insufficient_inspections"
)

const (
	DefaultMinInspections = 3
	DefaultFallbackK      = 3
	DefaultTimeout        = 30 * time.Second
)

// AdapterConfig tunes the guardrails around the oracle.
type AdapterConfig struct {
	Timeout time.Duration
	// MinInspections is the number of distinct offered listings the oracle
	// must inspect before its selection is trusted. Capped at the number
	// of listings offered.
	MinInspections int
	// FallbackK is how many leading shortlist entries per category the
	// deterministic fallback keeps.
	FallbackK int
}

// Adapter wraps an Oracle with timeouts, schema checks and the whitelist.
type Adapter struct {
	oracle Oracle
	config AdapterConfig
	logger logger.Logger
	obs    *observability.Observability
}

// NewAdapter builds an adapter. o may be nil, in which case every request
// takes the fallback. obs may be nil.
func NewAdapter(o Oracle, cfg AdapterConfig, log logger.Logger, obs *observability.Observability) *Adapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinInspections == 0 {
		cfg.MinInspections = DefaultMinInspections
	}
	if cfg.FallbackK <= 0 {
		cfg.FallbackK = DefaultFallbackK
	}
	return &Adapter{
		oracle: o,
		config: cfg,
		logger: log.With(map[string]interface{}{"component": "oracle-adapter"}),
		obs:    obs,
	}
}

// Enabled reports whether an oracle is configured.
func (a *Adapter) Enabled() bool {
	return a.oracle != nil
}

// Invoke runs one oracle call under the adapter's timeout. Errors are always
// oracle-family StandardErrors.
func (a *Adapter) Invoke(ctx context.Context, req *Request) (*Response, error) {
	if a.oracle == nil {
		return nil, errors.NewOracleUnavailableError(stderrors.New("no oracle configured"))
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	callCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.oracle.Complete(callCtx, req)
	a.obs.RecordOracleLatency(ctx, req.Operation, time.Since(start))

	if err == nil && resp == nil {
		err = errors.NewOracleMalformedError("empty response")
	}
	if err != nil {
		if !errors.IsOracleFailure(err) {
			if stderrors.Is(callCtx.Err(), context.DeadlineExceeded) {
				err = errors.NewOracleTimeoutError()
			} else {
				err = errors.NewOracleUnavailableError(err)
			}
		}
		metrics.OracleCalls.WithLabelValues(req.Operation, strings.ToLower(string(errors.CodeOf(err)))).Inc()
		return nil, err
	}

	metrics.OracleCalls.WithLabelValues(req.Operation, "ok").Inc()
	return resp, nil
}

// selectionAnswer is the part of the oracle's answer we read. Anything else
// in the object, such as a rationale, is ignored.
type selectionAnswer struct {
	HousingIDs    []string `json:"housing_ids"`
	CuisineIDs    []string `json:"cuisine_ids"`
	ExperienceIDs []string `json:"experience_ids"`
}

func (s selectionAnswer) ids(c models.Category) []string {
	switch c {
	case models.CategoryHousing:
		return s.HousingIDs
	case models.CategoryCuisine:
		return s.CuisineIDs
	case models.CategoryExperience:
		return s.ExperienceIDs
	}
	return nil
}

// RequestShortlistSelection asks the oracle to pick from the shortlists. It
// never fails: every error path returns Fallback. Every returned ID was in
// the shortlist of its category.
func (a *Adapter) RequestShortlistSelection(ctx context.Context, prefs models.Preferences, tc models.TravelContext, sl models.Shortlists) models.Selection {
	whitelists := make(map[models.Category][]string, len(models.Categories))
	offered := 0
	for _, c := range models.Categories {
		whitelists[c] = sl.IDs(c)
		offered += len(whitelists[c])
	}

	if offered == 0 {
		return a.fallback(sl, ReasonEmpty, nil)
	}
	if a.oracle == nil {
		return a.fallback(sl, ReasonDisabled, nil)
	}

	req := &Request{
		ID:        uuid.NewString(),
		Operation: OperationSelect,
		Prompt:    selectionPrompt,
		Context:   selectionContext(prefs, tc, sl, whitelists, a.minInspections(offered)),
		Tools:     []string{ToolInspectListing},
	}
	log := a.logger.With(map[string]interface{}{"requestId": req.ID})

	resp, err := a.Invoke(ctx, req)
	if err != nil {
		return a.fallback(sl, ReasonFailed, err)
	}

	pad := NewScratchpad(whitelists)
	pad.RecordAll(resp.Inspections)
	if pad.Count() < a.minInspections(offered) {
		return a.fallback(sl, ReasonFewInspections, fmt.Errorf("inspected %d of %d required listings",
			pad.Count(), a.minInspections(offered)))
	}

	answer, err := decodeSelection(resp.Text)
	if err != nil {
		return a.fallback(sl, ReasonMalformed, err)
	}

	sel := models.Selection{}
	for _, c := range models.Categories {
		kept, dropped := Intersect(answer.ids(c), whitelists[c])
		sel.Set(c, kept)
		if len(dropped) > 0 {
			metrics.OracleDroppedIDs.WithLabelValues(string(c)).Add(float64(len(dropped)))
			log.Warn("Dropped IDs not offered to the oracle", map[string]interface{}{
				"category": string(c),
				"dropped":  dropped,
			})
		}
	}

	log.Info("Oracle selection accepted", map[string]interface{}{
		"housing":     len(sel.HousingIDs),
		"cuisine":     len(sel.CuisineIDs),
		"experiences": len(sel.ExperienceIDs),
		"inspections": pad.Count(),
	})
	return sel
}

func (a *Adapter) minInspections(offered int) int {
	if a.config.MinInspections < 0 {
		return 0
	}
	return min(a.config.MinInspections, offered)
}

func (a *Adapter) fallback(sl models.Shortlists, reason string, cause error) models.Selection {
	metrics.OracleFallbacks.WithLabelValues(OperationSelect, reason).Inc()
	fields := map[string]interface{}{"reason": reason}
	if cause != nil {
		fields["error"] = cause.Error()
	}
	a.logger.Warn("Using deterministic shortlist selection", fields)

	sel := Fallback(sl, a.config.FallbackK)
	sel.Reason = reason
	return sel
}

func decodeSelection(text string) (selectionAnswer, error) {
	var answer selectionAnswer

	raw, err := ExtractJSON(text)
	if err != nil {
		return answer, errors.NewOracleMalformedError(err.Error())
	}
	if res := validation.SelectionSchema.ValidateJSON(raw); !res.Valid {
		return answer, errors.NewOracleMalformedError(res.Err().Error())
	}
	if err := json.Unmarshal(raw, &answer); err != nil {
		return answer, errors.NewOracleMalformedError(err.Error())
	}
	return answer, nil
}

// Fallback keeps the first k shortlist entries of each category.
func Fallback(sl models.Shortlists, k int) models.Selection {
	sel := models.Selection{Fallback: true}
	for _, c := range models.Categories {
		ids := sl.IDs(c)
		if k >= 0 && len(ids) > k {
			ids = ids[:k]
		}
		sel.Set(c, append([]string{}, ids...))
	}
	return sel
}

// Intersect keeps the IDs of answer present in whitelist, in answer order and
// without repeats. dropped lists the rest.
func Intersect(answer, whitelist []string) (kept, dropped []string) {
	allowed := make(map[string]struct{}, len(whitelist))
	for _, id := range whitelist {
		allowed[id] = struct{}{}
	}

	kept = []string{}
	seen := make(map[string]struct{}, len(answer))
	for _, id := range answer {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := allowed[id]; ok {
			kept = append(kept, id)
		} else {
			dropped = append(dropped, id)
		}
	}
	return kept, dropped
}
