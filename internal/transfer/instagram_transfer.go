package transfer

type MediaContainer struct {
	ImageURL       string `json:"image_url,omitempty"`
	Caption        string `json:"caption,omitempty"`
	MediaType      string `json:"media_type,omitempty"`
	IsCarouselItem bool   `json:"is_carousel_item,omitempty"`
}

type InstagramMediaResponse struct {
	ID string `json:"id"`
}

type InstagramInsightsResponse struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value int64 `json:"value"`
		} `json:"values"`
	} `json:"data"`
}

type InstagramMediaListResponse struct {
	Data []struct {
		ID        string `json:"id"`
		MediaType string `json:"media_type"`
		MediaURL  string `json:"media_url"`
		Timestamp string `json:"timestamp"`
	} `json:"data"`
}

type InstagramTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type InstagramErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		IsTransient  bool   `json:"is_transient"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}
