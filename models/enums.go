package models

// Severity is the risk level assigned to a violation.
type Severity string

const (
	SeverityLow      Severity = "منخفضة"
	SeverityMedium   Severity = "متوسطة"
	SeverityHigh     Severity = "عالية"
	SeverityCritical Severity = "حرجة"
)

// Department is the unit responsible for the area where a violation was observed.
type Department string

const (
	DepartmentProduction     Department = "الإنتاج"
	DepartmentMaintenance    Department = "الصيانة"
	DepartmentLogistics      Department = "الخدمات اللوجستية"
	DepartmentQuality        Department = "الجودة"
	DepartmentAdministration Department = "الإدارة"
)

// Category classifies the hazard type of a violation.
type Category string

const (
	CategoryPPE         Category = "أدوات الوقاية الشخصية"
	CategoryEquipment   Category = "سلامة المعدات"
	CategoryEnvironment Category = "نظافة البيئة والترتيب"
	CategoryFireSafety  Category = "السلامة من الحريق"
	CategoryElectrical  Category = "المخاطر الكهربائية"
)

// FilterAll is the sentinel value that disables a categorical feed filter.
const FilterAll = "all"

var severities = map[Severity]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

var departments = map[Department]bool{
	DepartmentProduction:     true,
	DepartmentMaintenance:    true,
	DepartmentLogistics:      true,
	DepartmentQuality:        true,
	DepartmentAdministration: true,
}

var categories = map[Category]bool{
	CategoryPPE:         true,
	CategoryEquipment:   true,
	CategoryEnvironment: true,
	CategoryFireSafety:  true,
	CategoryElectrical:  true,
}

// ValidSeverity reports whether s is a member of the closed severity enumeration.
func ValidSeverity(s Severity) bool { return severities[s] }

// ValidDepartment reports whether d is a member of the closed department enumeration.
func ValidDepartment(d Department) bool { return departments[d] }

// ValidCategory reports whether c is a member of the closed category enumeration.
func ValidCategory(c Category) bool { return categories[c] }

// Severities returns the enumeration in display order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Departments returns the enumeration in display order.
func Departments() []Department {
	return []Department{
		DepartmentProduction,
		DepartmentMaintenance,
		DepartmentLogistics,
		DepartmentQuality,
		DepartmentAdministration,
	}
}

// Categories returns the enumeration in display order.
func Categories() []Category {
	return []Category{
		CategoryPPE,
		CategoryEquipment,
		CategoryEnvironment,
		CategoryFireSafety,
		CategoryElectrical,
	}
}
