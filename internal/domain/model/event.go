package model

import "time"

// EventKind names what happened in the simulation.
type EventKind string

const (
	EventSeasonStarted      EventKind = "season_started"
	EventTournamentStarted  EventKind = "tournament_started"
	EventRoundStarted       EventKind = "round_started"
	EventMatchProgress      EventKind = "match_progress"
	EventMatchResult        EventKind = "match_result"
	EventTournamentFinished EventKind = "tournament_finished"
	EventStandings          EventKind = "standings"
	EventSeasonFinished     EventKind = "season_finished"
	EventNotice             EventKind = "notice"
)

// Progress reports whether the event is a high-frequency progress update.
// Progress events may be dropped when the display falls behind; boundary
// events may not.
func (k EventKind) Progress() bool {
	return k == EventMatchProgress
}

// NoticeKind classifies EventNotice payloads.
type NoticeKind string

const (
	NoticeBoost      NoticeKind = "boost"
	NoticeInjury     NoticeKind = "injury"
	NoticeRetirement NoticeKind = "retirement"
	NoticeHalted     NoticeKind = "halted"
)

// MatchSide is one competitor's view of a match.
type MatchSide struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ranking int    `json:"ranking"`
	Skill   int    `json:"skill"`
	Score   int    `json:"score"`
}

// StandingRow is one line of the rankings table.
type StandingRow struct {
	Ranking       int    `json:"ranking"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Points        int    `json:"points"`
	Age           int    `json:"age"`
	Skill         int    `json:"skill"`
	Wins          int    `json:"wins"`
	RunnerUps     int    `json:"runner_ups"`
	Championships int    `json:"championships"`
	TitleSpan     string `json:"title_span,omitempty"`
	Prize         int64  `json:"prize"`
}

// Event is what the simulation emits for display sinks.
type Event struct {
	Kind   EventKind `json:"kind"`
	Season int       `json:"season"`
	Format string    `json:"format,omitempty"`
	Label  string    `json:"label,omitempty"`

	Player1 *MatchSide `json:"player1,omitempty"`
	Player2 *MatchSide `json:"player2,omitempty"`

	Champion *MatchSide    `json:"champion,omitempty"`
	RunnerUp *MatchSide    `json:"runner_up,omitempty"`
	Purse    int64         `json:"purse,omitempty"`
	Table    []StandingRow `json:"table,omitempty"`

	Notice NoticeKind `json:"notice,omitempty"`
	Amount int        `json:"amount,omitempty"`

	At time.Time `json:"at"`
}

// SeasonRecord is one line of the champions board.
type SeasonRecord struct {
	Season       int    `json:"season"`
	Format       string `json:"format"`
	ChampionID   string `json:"champion_id"`
	ChampionName string `json:"champion_name"`
	RunnerUpName string `json:"runner_up_name"`
	Purse        int64  `json:"purse"`
}

// Side builds the MatchSide view of c with the given score.
func Side(c *Competitor, score int) *MatchSide {
	return &MatchSide{ID: c.ID, Name: c.DisplayName(), Ranking: c.Ranking, Skill: c.Skill, Score: score}
}

// Row builds the StandingRow view of c.
func Row(c *Competitor) StandingRow {
	return StandingRow{
		Ranking:       c.Ranking,
		ID:            c.ID,
		Name:          c.Name,
		Points:        c.Points,
		Age:           c.Age,
		Skill:         c.Skill,
		Wins:          c.Wins,
		RunnerUps:     c.RunnerUps,
		Championships: c.Championships,
		TitleSpan:     c.TitleSpan(),
		Prize:         c.CareerPrize,
	}
}
