package sqlite

import (
	"context"
	"fmt"

	"campusmarket/trading/internal/model"
)

func (s *Store) CountCourses(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM timetable_courses").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return n, nil
}

// ReplaceCourses swaps the whole timetable for courses.
func (s *Store) ReplaceCourses(ctx context.Context, courses []model.Course) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM timetable_courses"); err != nil {
		return fmt.Errorf("failed to clear courses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timetable_courses
			(academic_year, term, major, grade_level, course_code, course_name_cn, course_name_en)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare course insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range courses {
		_, err := stmt.ExecContext(ctx,
			c.AcademicYear, c.Term, c.Major, c.GradeLevel, c.CourseCode, c.CourseNameCN, c.CourseNameEN,
		)
		if err != nil {
			return fmt.Errorf("failed to insert course %s: %w", c.CourseCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ListCourses(ctx context.Context, major string, grade, term int) ([]model.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT academic_year, term, major, grade_level, course_code, course_name_cn, course_name_en
		FROM timetable_courses
		WHERE major = ? AND grade_level = ? AND term = ?
		ORDER BY course_code
	`, major, grade, term)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		err := rows.Scan(&c.AcademicYear, &c.Term, &c.Major, &c.GradeLevel, &c.CourseCode, &c.CourseNameCN, &c.CourseNameEN)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
