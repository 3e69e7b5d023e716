package models

import "time"

// SatisfactionStats is the overall breakdown across a set of surveys.
type SatisfactionStats struct {
	Total            int64   `json:"total"`
	Satisfied        int64   `json:"satisfied"`
	Dissatisfied     int64   `json:"dissatisfied"`
	SatisfactionRate float64 `json:"satisfactionRate"`
}

// DepartmentStats aggregates surveys per department.
type DepartmentStats struct {
	DepartmentID     int64   `json:"departmentId"`
	DepartmentName   string  `json:"departmentName"`
	Total            int64   `json:"total"`
	Satisfied        int64   `json:"satisfied"`
	Dissatisfied     int64   `json:"dissatisfied"`
	SatisfactionRate float64 `json:"satisfactionRate"`
}

// ReasonStats aggregates surveys per visit reason.
type ReasonStats struct {
	VisitReason      VisitReason `json:"visitReason"`
	Total            int64       `json:"total"`
	Satisfied        int64       `json:"satisfied"`
	Dissatisfied     int64       `json:"dissatisfied"`
	SatisfactionRate float64     `json:"satisfactionRate"`
}

// MonthlyStats aggregates surveys per calendar month.
type MonthlyStats struct {
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	Total            int64   `json:"total"`
	Satisfied        int64   `json:"satisfied"`
	Dissatisfied     int64   `json:"dissatisfied"`
	SatisfactionRate float64 `json:"satisfactionRate"`
}

// DashboardStats is the full payload backing the admin dashboard.
type DashboardStats struct {
	Overall     SatisfactionStats `json:"overall"`
	Monthly     []MonthlyStats    `json:"monthly"`
	Departments []DepartmentStats `json:"departments"`
	Reasons     []ReasonStats     `json:"reasons"`
	GeneratedAt time.Time         `json:"generatedAt"`
}
