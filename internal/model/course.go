package model

type Course struct {
	AcademicYear string `json:"academic_year"`
	Term         int    `json:"term"`
	Major        string `json:"major"`
	GradeLevel   int    `json:"grade_level"`
	CourseCode   string `json:"course_code"`
	CourseNameCN string `json:"course_name_cn"`
	CourseNameEN string `json:"course_name_en"`
}
