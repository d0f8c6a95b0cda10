package certificate

type IssueRequest struct {
	CourseID    string `json:"course_id" validate:"required,max=128"`
	CourseTitle string `json:"course_title" validate:"required,max=255"`
	UserName    string `json:"user_name" validate:"required,max=255"`
	Score       *int   `json:"score" validate:"omitempty,min=0,max=100"`
}
