package validation

// MemberInput is one athlete in a competitor registration.
type MemberInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Age       int    `json:"age" validate:"gte=1,lte=120"`
	Sex       string `json:"sex" validate:"required,oneof=M F"`
}

// CompetitorInput registers a competitor. The member count must match the category.
type CompetitorInput struct {
	Category string        `json:"category" validate:"required,category"`
	Club     string        `json:"club" validate:"required,max=200"`
	Members  []MemberInput `json:"members" validate:"required,dive"`
}

// ScoreInput is a judge's score submission.
type ScoreInput struct {
	JudgeID      int64    `json:"judge_id" validate:"required,gt=0"`
	CompetitorID int64    `json:"competitor_id" validate:"required,gt=0"`
	ScoreType    string   `json:"score_type" validate:"required,scoretype"`
	Value        *float64 `json:"value" validate:"required,score"`
}

// DeleteScoreInput removes a score. JudgeID is ignored for difficulty, which
// clears the whole difficulty panel.
type DeleteScoreInput struct {
	JudgeID      int64  `json:"judge_id" validate:"required_unless=ScoreType difficulty,omitempty,gt=0"`
	CompetitorID int64  `json:"competitor_id" validate:"required,gt=0"`
	ScoreType    string `json:"score_type" validate:"required,scoretype"`
}

// ValidateInput is the head judge's total for a competitor.
type ValidateInput struct {
	TotalScore *float64 `json:"total_score" validate:"required,total"`
}

// JudgeInput registers a judge.
type JudgeInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Role      string `json:"role" validate:"required,judgerole"`
}

// JudgeLoginInput carries the name a judge enters when logging in.
type JudgeLoginInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// CompetitorRef names a competitor for the vote and show slots.
type CompetitorRef struct {
	CompetitorID int64 `json:"competitor_id" validate:"required,gt=0"`
}

// LogInput is one activity log message.
type LogInput struct {
	Message string `json:"message" validate:"required,max=1000"`
}
