package analysis

import "github.com/endosim/pk-api/internal/model"

// Monitoring collects the recommended lab work for every drug in the
// schedule, one item per drug in schedule order. Unknown drugs and
// drugs without monitoring requirements are skipped.
func (a *Analyzer) Monitoring(schedule []model.ScheduleEntry) []model.MonitoringItem {
	seen := make(map[string]bool, len(schedule))
	var items []model.MonitoringItem
	for _, entry := range schedule {
		if seen[entry.Drug] {
			continue
		}
		drug, ok := a.store.Get(entry.Drug)
		if !ok || len(drug.Monitoring) == 0 {
			continue
		}
		seen[entry.Drug] = true
		items = append(items, model.MonitoringItem{
			Drug:  drug.Name,
			Exams: append([]string(nil), drug.Monitoring...),
		})
	}
	return items
}
