package employee

import (
	"math"
	"sort"
	"strings"
)

// Pure aggregation over an in-memory snapshot of the collection. Nothing in
// this file touches a store or a clock; results are deterministic for a
// given input slice.

// Rounding is round-half-up everywhere so aggregates are reproducible.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

type DepartmentStat struct {
	Department    string  `json:"department"`
	EmployeeCount int     `json:"employee_count"`
	AverageSalary int64   `json:"average_salary"`
	MinSalary     float64 `json:"min_salary"`
	MaxSalary     float64 `json:"max_salary"`
	TotalSalary   float64 `json:"total_salary"`
}

type DepartmentAverage struct {
	Department string `json:"department"`
	AvgSalary  int64  `json:"avg_salary"`
}

// ComputeDepartmentStats groups records by exact department string and
// summarizes each group. Departments come from the data, never from a fixed
// list, so empty groups are never emitted. Output is sorted by department
// name ascending.
func ComputeDepartmentStats(records []Employee) []DepartmentStat {
	byDept := make(map[string]*DepartmentStat)
	for _, rec := range records {
		stat, ok := byDept[rec.Department]
		if !ok {
			stat = &DepartmentStat{
				Department: rec.Department,
				MinSalary:  rec.Salary,
				MaxSalary:  rec.Salary,
			}
			byDept[rec.Department] = stat
		}
		stat.EmployeeCount++
		stat.TotalSalary += rec.Salary
		if rec.Salary < stat.MinSalary {
			stat.MinSalary = rec.Salary
		}
		if rec.Salary > stat.MaxSalary {
			stat.MaxSalary = rec.Salary
		}
	}

	stats := make([]DepartmentStat, 0, len(byDept))
	for _, stat := range byDept {
		stat.AverageSalary = roundHalfUp(stat.TotalSalary / float64(stat.EmployeeCount))
		stats = append(stats, *stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Department < stats[j].Department
	})

	return stats
}

// ComputeDepartmentAverages is the reduced form served by /avg-salary.
func ComputeDepartmentAverages(records []Employee) []DepartmentAverage {
	stats := ComputeDepartmentStats(records)
	averages := make([]DepartmentAverage, len(stats))
	for i, stat := range stats {
		averages[i] = DepartmentAverage{
			Department: stat.Department,
			AvgSalary:  stat.AverageSalary,
		}
	}
	return averages
}

// Salary distribution buckets are half-open: a boundary value belongs to the
// upper bucket, so exactly 50000 lands in [50000, 75000).
var salaryBucketBounds = []struct {
	Label string
	Lower float64
	Upper float64 // exclusive; +Inf for the last bucket
}{
	{"0-50000", 0, 50000},
	{"50000-75000", 50000, 75000},
	{"75000-100000", 75000, 100000},
	{"100000+", 100000, math.Inf(1)},
}

type SalaryBucket struct {
	Range      string `json:"range"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type SalaryDistribution struct {
	Buckets        []SalaryBucket `json:"buckets"`
	MinSalary      float64        `json:"min_salary"`
	MaxSalary      float64        `json:"max_salary"`
	MedianSalary   float64        `json:"median_salary"`
	AverageSalary  int64          `json:"average_salary"`
	TotalEmployees int            `json:"total_employees"`
}

// ComputeSalaryDistribution assigns every record to exactly one bucket and
// reports counts with integer percentages, plus global min/max/median/average.
// An empty input yields all-zero buckets rather than an error.
func ComputeSalaryDistribution(records []Employee) SalaryDistribution {
	dist := SalaryDistribution{
		Buckets:        make([]SalaryBucket, len(salaryBucketBounds)),
		TotalEmployees: len(records),
	}
	for i, b := range salaryBucketBounds {
		dist.Buckets[i] = SalaryBucket{Range: b.Label}
	}

	if len(records) == 0 {
		return dist
	}

	salaries := make([]float64, len(records))
	for i, rec := range records {
		salaries[i] = rec.Salary
		for j, b := range salaryBucketBounds {
			if rec.Salary >= b.Lower && rec.Salary < b.Upper {
				dist.Buckets[j].Count++
				break
			}
		}
	}

	total := float64(len(records))
	for i := range dist.Buckets {
		dist.Buckets[i].Percentage = int(roundHalfUp(100 * float64(dist.Buckets[i].Count) / total))
	}

	sort.Float64s(salaries)
	dist.MinSalary = salaries[0]
	dist.MaxSalary = salaries[len(salaries)-1]
	// Lower-middle element for even-sized lists, no interpolation.
	dist.MedianSalary = salaries[len(salaries)/2]

	var sum float64
	for _, s := range salaries {
		sum += s
	}
	dist.AverageSalary = roundHalfUp(sum / total)

	return dist
}

// FilterBySkill returns every record with at least one skill containing the
// term as a case-insensitive substring, preserving input order. A blank term
// matches nothing.
func FilterBySkill(records []Employee, term string) []Employee {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	matched := make([]Employee, 0)
	for _, rec := range records {
		for _, skill := range rec.Skills {
			if strings.Contains(strings.ToLower(skill), term) {
				matched = append(matched, rec)
				break
			}
		}
	}
	return matched
}
