package youtube

// Innertube request/response shapes. Only the fields this client consumes
// are declared; everything else in the payload is ignored.

type clientContext struct {
	Client clientInfo `json:"client"`
}

type clientInfo struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

func defaultContext() clientContext {
	return clientContext{Client: clientInfo{
		ClientName:    clientName,
		ClientVersion: clientVersion,
	}}
}

type playerRequest struct {
	VideoID string        `json:"videoId"`
	Context clientContext `json:"context"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	StreamingData struct {
		AdaptiveFormats []adaptiveFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
}

type adaptiveFormat struct {
	Itag     int    `json:"itag"`
	MimeType string `json:"mimeType"`
	Bitrate  int    `json:"bitrate"`
	URL      string `json:"url"`
}

type searchRequest struct {
	Query   string        `json:"query"`
	Context clientContext `json:"context"`
}

type searchResponse struct {
	Contents struct {
		SectionListRenderer struct {
			Contents []struct {
				ItemSectionRenderer struct {
					Contents []struct {
						VideoRenderer *videoRenderer `json:"videoRenderer"`
					} `json:"contents"`
				} `json:"itemSectionRenderer"`
			} `json:"contents"`
		} `json:"sectionListRenderer"`
	} `json:"contents"`
}

type videoRenderer struct {
	VideoID   string    `json:"videoId"`
	Title     runsText  `json:"title"`
	OwnerText runsText  `json:"ownerText"`
	Thumbnail thumbnails `json:"thumbnail"`
}

type thumbnails struct {
	Thumbnails []thumbnail `json:"thumbnails"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type runsText struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r runsText) text() string {
	var out string
	for _, run := range r.Runs {
		out += run.Text
	}
	return out
}
