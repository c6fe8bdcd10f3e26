// Package courses holds the pure progress and unlock computations over
// a course tree. Nothing here touches storage; callers persist the
// mutated course themselves.
package courses

import "github.com/colearn-app/colearn-api/models"

// RecalcProgress recomputes the aggregate progress percentage and every
// module's completed flag from the lesson completion state. A course
// with zero lessons has progress 0. Status flips to completed exactly
// when progress reaches 100 and never regresses afterwards, since
// lesson completion is monotonic.
func RecalcProgress(course *models.Course) {
	totalLessons := 0
	completedLessons := 0

	for i := range course.Modules {
		mod := &course.Modules[i]
		modComplete := true
		for j := range mod.Lessons {
			totalLessons++
			if mod.Lessons[j].Completed {
				completedLessons++
			} else {
				modComplete = false
			}
		}
		mod.Completed = modComplete
	}

	if totalLessons == 0 {
		course.Progress = 0
	} else {
		course.Progress = int(float64(completedLessons)/float64(totalLessons)*100 + 0.5)
	}

	if course.Progress == 100 {
		course.Status = models.CourseCompleted
	}
}

// ModuleUnlocked reports whether module i is accessible: the first
// module always is, later ones require every earlier module completed.
func ModuleUnlocked(course *models.Course, i int) bool {
	if i < 0 || i >= len(course.Modules) {
		return false
	}
	for k := 0; k < i; k++ {
		if !course.Modules[k].Completed {
			return false
		}
	}
	return true
}

// LessonUnlocked reports whether lesson j within a module is
// accessible. Consumption is strictly sequential within a module.
func LessonUnlocked(mod *models.Module, j int) bool {
	if j < 0 || j >= len(mod.Lessons) {
		return false
	}
	for k := 0; k < j; k++ {
		if !mod.Lessons[k].Completed {
			return false
		}
	}
	return true
}

// AssignmentUnlocked gates a module's assignment until all of that
// module's lessons are completed. An assignment pointing at an unknown
// module stays locked.
func AssignmentUnlocked(course *models.Course, moduleID string) bool {
	for i := range course.Modules {
		if course.Modules[i].ID != moduleID {
			continue
		}
		for j := range course.Modules[i].Lessons {
			if !course.Modules[i].Lessons[j].Completed {
				return false
			}
		}
		return true
	}
	return false
}

// FindLesson returns the index of the module containing the lesson, and
// the lesson index within it, or (-1, -1) when absent.
func FindLesson(course *models.Course, lessonID string) (int, int) {
	for i := range course.Modules {
		for j := range course.Modules[i].Lessons {
			if course.Modules[i].Lessons[j].ID == lessonID {
				return i, j
			}
		}
	}
	return -1, -1
}

// FindAssignment returns the index of the assignment, or -1.
func FindAssignment(course *models.Course, assignmentID string) int {
	for i := range course.Assignments {
		if course.Assignments[i].ID == assignmentID {
			return i
		}
	}
	return -1
}
