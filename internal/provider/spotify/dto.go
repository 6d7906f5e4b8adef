package spotify

// Provider API response shapes.

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type searchResponse struct {
	Tracks tracksResult `json:"tracks"`
}

type tracksResult struct {
	Total int     `json:"total"`
	Items []track `json:"items"`
}

type track struct {
	Name    string   `json:"name"`
	Album   album    `json:"album"`
	Artists []artist `json:"artists"`
}

type album struct {
	Name   string       `json:"name"`
	Images []albumImage `json:"images"`
}

type albumImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type artist struct {
	Name string `json:"name"`
}
