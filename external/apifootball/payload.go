package apifootball

type envelope[T any] struct {
	Get      string `json:"get"`
	Errors   any    `json:"errors"`
	Results  int    `json:"results"`
	Response *T     `json:"response"`
}

type teamItem struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
	Logo *string `json:"logo"`
}

type standingsItem struct {
	League *standingsLeague `json:"league"`
}

type standingsLeague struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Country   string           `json:"country"`
	Logo      *string          `json:"logo"`
	Flag      *string          `json:"flag"`
	Season    int              `json:"season"`
	Standings [][]standingItem `json:"standings"`
}

type standingItem struct {
	Rank      int      `json:"rank"`
	Team      teamItem `json:"team"`
	Points    int      `json:"points"`
	GoalsDiff *int     `json:"goalsDiff"`
	Form      *string  `json:"form"`
	Update    *string  `json:"update"`
	All       struct {
		Played *int `json:"played"`
	} `json:"all"`
}

type fixtureItem struct {
	Fixture struct {
		ID       int64   `json:"id"`
		Date     *string `json:"date"`
		Timezone string  `json:"timezone"`
		Status   struct {
			Short *string `json:"short"`
			Long  *string `json:"long"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Season int    `json:"season"`
		Round  string `json:"round"`
	} `json:"league"`
	Teams struct {
		Home teamItem `json:"home"`
		Away teamItem `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home any `json:"home"`
		Away any `json:"away"`
	} `json:"goals"`
}
