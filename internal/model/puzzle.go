package model

// Puzzle is a prompt shown to players plus the hidden solution the oracle
// judges against.
type Puzzle struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	Prompt   string `json:"prompt" bson:"prompt"`
	Solution string `json:"solution" bson:"solution"`
}
