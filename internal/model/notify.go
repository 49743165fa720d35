package model

// SendUpdateRequest is posted by the game server for each player update.
type SendUpdateRequest struct {
	UUID    string `json:"uuid"`
	Message string `json:"message"`
}

// SendUpdateResponse reports where the update was delivered.
type SendUpdateResponse struct {
	Success     bool   `json:"success"`
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
}

// GenerateCodeRequest asks for a verification code for a player.
type GenerateCodeRequest struct {
	UUID string `json:"uuid"`
}

// GenerateCodeResponse carries a fresh code, or reports that the player is
// already linked (in which case no code is issued).
type GenerateCodeResponse struct {
	Success       bool   `json:"success"`
	Code          string `json:"code,omitempty"`
	ExpiresIn     int    `json:"expiresIn,omitempty"`
	AlreadyLinked bool   `json:"alreadyLinked,omitempty"`
}
