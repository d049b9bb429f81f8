package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case SessionDetail:
		o.printSessionDetail(v)
	case JoinResult:
		o.printJoinResult(v)
	case []SessionDetail:
		o.printSessionList(v)
	case LeaderboardResult:
		o.printLeaderboard(v)
	case SessionsByDate:
		o.printSessionsByDate(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines user and token
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Player response type
type Player struct {
	UserID       string    `json:"user_id"`
	ChosenNumber int       `json:"chosen_number"`
	JoinedAt     time.Time `json:"joined_at"`
}

// QueueEntry response type
type QueueEntry struct {
	UserID       string    `json:"user_id"`
	ChosenNumber int       `json:"chosen_number"`
	Position     int       `json:"position"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

// Session response type
type Session struct {
	ID            string    `json:"id"`
	CreatedBy     string    `json:"created_by"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	WinningNumber int       `json:"winning_number,omitempty"`
	MaxPlayers    int       `json:"max_players"`
}

// SessionDetail response type
type SessionDetail struct {
	Session
	Players []Player     `json:"players"`
	Queue   []QueueEntry `json:"queue"`
}

// JoinResult response type
type JoinResult struct {
	Message string        `json:"message"`
	Session SessionDetail `json:"session"`
}

// Winner response type
type Winner struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TotalWins   int    `json:"total_wins"`
}

// LeaderboardResult response type
type LeaderboardResult struct {
	Period  string   `json:"period"`
	Winners []Winner `json:"winners"`
}

// SessionsByDate maps a YYYY-MM-DD date to the sessions created that day
type SessionsByDate map[string][]Session

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	guestStr := "no"
	if u.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("User: %s (%s)\n", u.DisplayName, u.ID)
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.Token)
}

func (o *Output) printSessionDetail(d SessionDetail) {
	fmt.Printf("Session: %s\n", d.ID)
	fmt.Printf("Status: %s\n", d.Status)
	fmt.Printf("Created By: %s\n", d.CreatedBy)
	if d.Status == "ACTIVE" || d.Status == "ENDED" {
		fmt.Printf("Start: %s\n", d.StartTime.Format(time.RFC3339))
		fmt.Printf("End: %s\n", d.EndTime.Format(time.RFC3339))
	}
	if d.WinningNumber != 0 {
		fmt.Printf("Winning Number: %d\n", d.WinningNumber)
	}

	fmt.Printf("Players (%d/%d):\n", len(d.Players), d.MaxPlayers)
	for _, p := range d.Players {
		fmt.Printf("  - %s chose %d\n", p.UserID, p.ChosenNumber)
	}

	if len(d.Queue) > 0 {
		fmt.Printf("Queue (%d):\n", len(d.Queue))
		for _, q := range d.Queue {
			fmt.Printf("  %d. %s chose %d\n", q.Position, q.UserID, q.ChosenNumber)
		}
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	fmt.Println(j.Message)
	fmt.Println()
	o.printSessionDetail(j.Session)
}

func (o *Output) printSessionList(sessions []SessionDetail) {
	if len(sessions) == 0 {
		fmt.Println("No open sessions")
		return
	}
	for i, d := range sessions {
		if i > 0 {
			fmt.Println()
		}
		o.printSessionDetail(d)
	}
}

func (o *Output) printLeaderboard(l LeaderboardResult) {
	fmt.Printf("Leaderboard (%s):\n", l.Period)
	if len(l.Winners) == 0 {
		fmt.Println("  No wins recorded")
		return
	}
	for i, w := range l.Winners {
		fmt.Printf("  %d. %s - %d wins\n", i+1, w.DisplayName, w.TotalWins)
	}
}

func (o *Output) printSessionsByDate(byDate SessionsByDate) {
	if len(byDate) == 0 {
		fmt.Println("No sessions")
		return
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		fmt.Printf("%s:\n", date)
		for _, sess := range byDate[date] {
			line := fmt.Sprintf("  - %s [%s]", sess.ID, sess.Status)
			if sess.WinningNumber != 0 {
				line += fmt.Sprintf(" winning number %d", sess.WinningNumber)
			}
			fmt.Println(line)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
