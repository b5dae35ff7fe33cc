package main

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
)

// session holds the two replicas one harness process drives (spec §6.5
// "Harness HTTP inspector").
type session struct {
	log      *logrus.Logger
	replicas map[string]*replica
}

func newHarnessSession(log *logrus.Logger) (*session, error) {
	a, b, err := newSession(log)
	if err != nil {
		return nil, err
	}
	return &session{log: log, replicas: map[string]*replica{"a": a, "b": b}}, nil
}

func (s *session) replica(name string) (*replica, bool) {
	r, ok := s.replicas[name]
	return r, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// inspectorRouter builds the chi router serving /invoke and /inspect and
// /exchange (spec §6.5); the health endpoints are served separately by the
// gorilla/mux router in health.go.
func inspectorRouter(s *session) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(countRequests)

	r.Route("/invoke/{replica}", func(r chi.Router) {
		r.Post("/counter/increment", s.handleCounterIncrement)
		r.Get("/counter/value", s.handleCounterValue)
		r.Get("/counter/executor_count", s.handleCounterExecutorCount)

		r.Post("/map/insert", s.handleMapInsert)
		r.Get("/map/get", s.handleMapGet)
		r.Post("/map/remove", s.handleMapRemove)

		r.Post("/set/add", s.handleSetAdd)
		r.Post("/set/remove", s.handleSetRemove)
		r.Get("/set/contains", s.handleSetContains)

		r.Post("/vector/push", s.handleVectorPush)
		r.Post("/vector/pop", s.handleVectorPop)
		r.Get("/vector/get", s.handleVectorGet)

		r.Post("/lww/set", s.handleLwwSet)
		r.Post("/lww/clear", s.handleLwwClear)
		r.Get("/lww/get", s.handleLwwGet)
	})

	r.Get("/inspect/{replica}/state", s.handleInspectState)
	r.Get("/inspect/{replica}/deltas", s.handleInspectDeltas)
	r.Post("/exchange", s.handleExchange)

	return r
}

func (s *session) repl(w http.ResponseWriter, r *http.Request) (*replica, bool) {
	name := chi.URLParam(r, "replica")
	rep, ok := s.replica(name)
	if !ok {
		writeError(w, http.StatusNotFound, errUnknownReplica(name))
		return nil, false
	}
	return rep, true
}

type errUnknownReplica string

func (e errUnknownReplica) Error() string { return "unknown replica " + string(e) }

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err.Error() != "EOF" {
		return err
	}
	return nil
}

// --- Counter -----------------------------------------------------------------

func (s *session) handleCounterIncrement(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var body struct {
		Amount *int64 `json:"amount,omitempty"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	_, err := rep.withRecording(func() (any, error) {
		if body.Amount != nil {
			return nil, rep.Counter.IncrementBy(*body.Amount)
		}
		return nil, rep.Counter.Increment()
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	val, err := rep.Counter.Value()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"value": val})
}

func (s *session) handleCounterValue(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	val, err := rep.Counter.Value()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"value": val})
}

func (s *session) handleCounterExecutorCount(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var executor bridge.ExecutorID
	if raw := r.URL.Query().Get("executor"); raw != "" {
		b, err := hex.DecodeString(raw)
		if err != nil || len(b) != 32 {
			writeError(w, http.StatusBadRequest, errBadExecutor(raw))
			return
		}
		copy(executor[:], b)
	}
	val, err := rep.Counter.ExecutorCount(executor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"value": val})
}

type errBadExecutor string

func (e errBadExecutor) Error() string { return "bad executor hex: " + string(e) }

// --- Map -----------------------------------------------------------------------

func (s *session) handleMapInsert(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var body struct {
		Key   jsonValue `json:"key"`
		Value jsonValue `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	key, err := body.Key.toValue()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	val, err := body.Value.toValue()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var prev codec.Value
	var existed bool
	if _, err := rep.withRecording(func() (any, error) {
		prev, existed, err = rep.M.Insert(key, val)
		return nil, err
	}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"previous": fromValue(prev), "existed": existed})
}

func (s *session) handleMapGet(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	key, err := queryValue(r, "key")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	val, present, err := rep.M.Get(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": fromValue(val), "present": present})
}

func (s *session) handleMapRemove(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var body struct {
		Key jsonValue `json:"key"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	key, err := body.Key.toValue()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var prev codec.Value
	var found bool
	if _, err := rep.withRecording(func() (any, error) {
		prev, found, err = rep.M.Remove(key)
		return nil, err
	}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"previous": fromValue(prev), "found": found})
}

// --- Set -----------------------------------------------------------------------

func (s *session) handleSetAdd(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var body struct {
		Value jsonValue `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	val, err := body.Value.toValue()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var inserted bool
	if _, err := rep.withRecording(func() (any, error) {
		inserted, err = rep.S.Add(val)
		return nil, err
	}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inserted": inserted})
}

func (s *session) handleSetRemove(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var body struct {
		Value jsonValue `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	val, err := body.Value.toValue()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var removed bool
	if _, err := rep.withRecording(func() (any, error) {
		removed, err = rep.S.Remove(val)
		return nil, err
	}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *session) handleSetContains(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	val, err := queryValue(r, "value")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	present, err := rep.S.Contains(val)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"present": present})
}

// --- Vector --------------------------------------------------------------------

func (s *session) handleVectorPush(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var body struct {
		Value jsonValue `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	val, err := body.Value.toValue()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := rep.withRecording(func() (any, error) {
		return nil, rep.V.Push(val)
	}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	n, err := rep.V.Len()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"len": n})
}

func (s *session) handleVectorPop(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var val codec.Value
	var present bool
	if _, err := rep.withRecording(func() (any, error) {
		var err error
		val, present, err = rep.V.Pop()
		return nil, err
	}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": fromValue(val), "present": present})
}

func (s *session) handleVectorGet(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	idx, err := queryInt(r, "index")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	val, err := rep.V.Get(idx)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": fromValue(val)})
}

// --- Lww -----------------------------------------------------------------------

func (s *session) handleLwwSet(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	var body struct {
		Value jsonValue `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	val, err := body.Value.toValue()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := rep.withRecording(func() (any, error) {
		return nil, rep.L.Set(val)
	}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *session) handleLwwClear(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	if _, err := rep.withRecording(func() (any, error) {
		return nil, rep.L.Clear()
	}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *session) handleLwwGet(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	val, present, err := rep.L.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": fromValue(val), "present": present})
}

// --- Inspect / exchange ----------------------------------------------------------

func (s *session) handleInspectState(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	counterVal, _ := rep.Counter.Value()
	mapEntries, _ := rep.M.Entries()
	setEntries, _ := rep.S.Entries()
	vec, _ := rep.V.ToSequence()
	lww, lwwPresent, _ := rep.L.Get()

	mapOut := make(map[string]jsonValue, len(mapEntries))
	for _, p := range mapEntries {
		mapOut[summarizeKey(p.Key)] = fromValue(p.Value)
	}
	setOut := make([]jsonValue, 0, len(setEntries))
	for _, v := range setEntries {
		setOut = append(setOut, fromValue(v))
	}
	vecOut := make([]jsonValue, 0, len(vec))
	for _, v := range vec {
		vecOut = append(vecOut, fromValue(v))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"counter": counterVal,
		"map":     mapOut,
		"set":     setOut,
		"vector":  vecOut,
		"lww":     map[string]any{"value": fromValue(lww), "present": lwwPresent},
	})
}

func summarizeKey(v codec.Value) string {
	switch v.Kind {
	case codec.KindString:
		return v.Str
	case codec.KindU64:
		return hex.EncodeToString([]byte{byte(v.U64)})
	default:
		return hex.EncodeToString(v.Bytes)
	}
}

func (s *session) handleInspectDeltas(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.repl(w, r)
	if !ok {
		return
	}
	commits := rep.host.Commits()
	out := make([]map[string]any, 0, len(commits))
	for _, c := range commits {
		out = append(out, map[string]any{
			"root_hash":      hex.EncodeToString(c.RootHash[:]),
			"artifact_bytes": len(c.Artifact),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *session) handleExchange(w http.ResponseWriter, r *http.Request) {
	a, b := s.replicas["a"], s.replicas["b"]
	aToB := a.pendingForPeer()
	bToA := b.pendingForPeer()

	appliedToB, err := b.apply(aToB)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	appliedToA, err := a.apply(bToA)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"applied_to_a": appliedToA,
		"applied_to_b": appliedToB,
	})
}

func queryValue(r *http.Request, param string) (codec.Value, error) {
	q := r.URL.Query()
	jv := jsonValue{}
	if v := q.Get(param + "_str"); v != "" {
		jv.Str = &v
	}
	if v := q.Get(param + "_hex"); v != "" {
		jv.Hex = &v
	}
	if v := q.Get(param + "_u64"); v != "" {
		n, err := parseUint(v)
		if err != nil {
			return codec.Value{}, err
		}
		jv.U64 = &n
	}
	return jv.toValue()
}

func queryInt(r *http.Request, param string) (int, error) {
	n, err := parseUint(r.URL.Query().Get(param))
	return int(n), err
}

func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, errNotANumber(s)
	}
	var n uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errNotANumber(s)
		}
		n = n*10 + uint64(c-'0')
	}
	return n, nil
}

type errNotANumber string

func (e errNotANumber) Error() string { return "not a number: " + string(e) }
