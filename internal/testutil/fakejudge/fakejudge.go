package fakejudge

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	TokenField  = "csrf_token"
	cookieName  = "ojuz_sid"
	FirstSubmID = 4242
)

// Received is a submission accepted by the fake judge.
type Received struct {
	ID       string
	Account  string
	Problem  string
	Language string
	Code     string
}

type Judge struct {
	server *httptest.Server

	mu       sync.Mutex
	accounts map[string]string // username -> password
	sessions map[string]string // sid -> username, "" when anonymous
	nextSid  int
	nextSubm int

	blockNext  int
	omitTokens bool

	loginPosts  map[string]int
	submitPosts map[string]int
	tokenGets   map[string]int
	summaryHits int

	received []Received
	verdicts map[string]string
}

// New starts a judge that knows the given accounts. It is shut down when the
// test finishes.
func New(t testing.TB, accounts map[string]string) *Judge {
	j := &Judge{
		accounts:    make(map[string]string, len(accounts)),
		sessions:    make(map[string]string),
		nextSubm:    FirstSubmID,
		loginPosts:  make(map[string]int),
		submitPosts: make(map[string]int),
		tokenGets:   make(map[string]int),
		verdicts:    make(map[string]string),
	}
	for u, p := range accounts {
		j.accounts[u] = p
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", j.handleHome)
	mux.HandleFunc("/login", j.handleLogin)
	mux.HandleFunc("/problem/submit/", j.handleSubmit)
	mux.HandleFunc("/submission/summary/1", j.handleSummary)
	mux.HandleFunc("/submission/", j.handleSubmission)
	j.server = httptest.NewServer(mux)
	t.Cleanup(j.server.Close)
	return j
}

func (j *Judge) URL() string { return j.server.URL }

// BlockNext makes the next n submit POSTs land back on the submit page.
func (j *Judge) BlockNext(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.blockNext = n
}

// OmitTokens renders forms without the token input.
func (j *Judge) OmitTokens(omit bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.omitTokens = omit
}

// Expire logs the account out on the server side only.
func (j *Judge) Expire(username string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for sid, u := range j.sessions {
		if u == username {
			j.sessions[sid] = ""
		}
	}
}

// SetPassword changes an account password on the judge.
func (j *Judge) SetPassword(username, password string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.accounts[username] = password
}

// SetVerdict sets the raw json returned by the summary endpoint for id.
func (j *Judge) SetVerdict(id string, rawJSON string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.verdicts[id] = rawJSON
}

func (j *Judge) LoginPosts(username string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.loginPosts[username]
}

func (j *Judge) SubmitPosts(username string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.submitPosts[username]
}

// TokenGets counts form page loads by path.
func (j *Judge) TokenGets(path string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.tokenGets[path]
}

func (j *Judge) SummaryHits() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.summaryHits
}

func (j *Judge) Received() []Received {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Received(nil), j.received...)
}

// session returns the sid of the request, issuing a cookie when missing.
// Callers hold j.mu.
func (j *Judge) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil {
		if _, ok := j.sessions[c.Value]; ok {
			return c.Value
		}
	}
	j.nextSid++
	sid := "s" + strconv.Itoa(j.nextSid)
	j.sessions[sid] = ""
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: sid, Path: "/"})
	return sid
}

func token(sid string) string { return "tok-" + sid }

func (j *Judge) page(w http.ResponseWriter, sid string, body string) {
	nav := `<a href="/login">Sign in</a>`
	if j.sessions[sid] != "" {
		nav = `<a href="/logout">Sign out</a> ` + html.EscapeString(j.sessions[sid])
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><head><title>oj.uz</title></head><body><nav>%s</nav>%s</body></html>", nav, body)
}

func (j *Judge) form(sid, action string, inner string) string {
	tok := ""
	if !j.omitTokens {
		tok = fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`, TokenField, token(sid))
	}
	return fmt.Sprintf(`<form method="post" action="%s">%s%s</form>`, action, tok, inner)
}

func (j *Judge) handleHome(w http.ResponseWriter, r *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	sid := j.session(w, r)
	j.page(w, sid, "<h1>Welcome</h1>")
}

func (j *Judge) handleLogin(w http.ResponseWriter, r *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	sid := j.session(w, r)

	if r.Method == http.MethodPost {
		_ = r.ParseForm()
		user := r.PostForm.Get("email")
		j.loginPosts[user]++
		pass, known := j.accounts[user]
		if known && pass == r.PostForm.Get("password") && r.PostForm.Get(TokenField) == token(sid) {
			j.sessions[sid] = user
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		j.sessions[sid] = ""
	} else {
		j.tokenGets["/login"]++
	}
	j.page(w, sid, j.form(sid, "/login", `<input name="email"><input name="password" type="password"><button name="submit">Sign in</button>`))
}

func (j *Judge) handleSubmit(w http.ResponseWriter, r *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	sid := j.session(w, r)
	user := j.sessions[sid]
	problem := strings.TrimPrefix(r.URL.Path, "/problem/submit/")

	if user == "" {
		http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusFound)
		return
	}

	if r.Method != http.MethodPost {
		j.tokenGets[r.URL.Path]++
		j.page(w, sid, j.form(sid, r.URL.Path, `<select name="language"></select><textarea name="code_1"></textarea>`))
		return
	}

	_ = r.ParseForm()
	j.submitPosts[user]++
	if r.PostForm.Get(TokenField) != token(sid) || j.blockNext > 0 {
		if j.blockNext > 0 {
			j.blockNext--
		}
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
		return
	}

	id := strconv.Itoa(j.nextSubm)
	j.nextSubm++
	j.received = append(j.received, Received{
		ID:       id,
		Account:  user,
		Problem:  problem,
		Language: r.PostForm.Get("language"),
		Code:     r.PostForm.Get("code_1"),
	})
	http.Redirect(w, r, "/submission/"+id, http.StatusFound)
}

func (j *Judge) handleSubmission(w http.ResponseWriter, r *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	sid := j.session(w, r)
	id := strings.TrimPrefix(r.URL.Path, "/submission/")
	for _, rec := range j.received {
		if rec.ID == id {
			j.page(w, sid, fmt.Sprintf(`<h2>Submission #%s</h2><div id="submission_details"><table><tr><td>1</td><td>Accepted</td></tr></table></div>`, id))
			return
		}
	}
	http.NotFound(w, r)
}

func (j *Judge) handleSummary(w http.ResponseWriter, r *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	sid := j.session(w, r)
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	j.summaryHits++
	if r.PostForm.Get(TokenField) != token(sid) {
		http.Error(w, "bad csrf token", http.StatusBadRequest)
		return
	}
	id := r.PostForm.Get("submission_id")
	raw, ok := j.verdicts[id]
	if !ok {
		b, _ := json.Marshal(map[string]any{
			"compilation_message":      "",
			"evaluating_subtask_order": []int{},
			"full_score":               100,
			"max_execution_time":       0,
			"max_memory":               0,
			"score":                    0,
			"text":                     "Pending",
		})
		raw = string(b)
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, raw)
}
