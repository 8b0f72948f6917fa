package models

// Education levels
const (
	EduSchool     = "среднее общее"
	EduVocational = "среднее профессиональное"
	EduIncomplete = "неоконченное высшее"
	EduHigher     = "высшее"
	EduMaster     = "магистратура"
	EduDoctorate  = "учёная степень"
)

// Family statuses
const (
	FamilySingle   = "Холост/Не замужем"
	FamilyMarried  = "В браке"
	FamilyCivil    = "Гражданский брак"
	FamilyDivorced = "Разведён/Разведена"
	FamilyWidowed  = "Вдовец/Вдова"
)

// IsGraduate reports whether education is a post-bachelor degree
func IsGraduate(education string) bool {
	return education == EduMaster || education == EduDoctorate
}

// EverMarried reports whether the family status implies a past or present marriage
func EverMarried(status string) bool {
	return status == FamilyMarried || status == FamilyDivorced || status == FamilyWidowed
}
