package authority

import "github.com/MKhiriev/go-estimate-sync/models"

// SeedSamples loads two demo estimates into s.
func SeedSamples(s *Store) {
	s.Seed("EST-1001", []models.EstimateLine{
		line(1, "EST-1001-1", "RPL", "Front bumper cover", "52119-0K923", 412.50, 2.4, 2.8),
		line(2, "EST-1001-2", "R&I", "Front bumper energy absorber", "", 0, 0.6, 0),
		line(3, "EST-1001-3", "RPR", "Left fender", "", 0, 1.5, 2.1),
		line(4, "EST-1001-4", "BLND", "Hood", "", 0, 0, 1.2),
		line(5, "EST-1001-5", "RPL", "Left headlamp assy", "81170-0K620", 389.00, 0.8, 0),
	})
	s.Seed("EST-1002", []models.EstimateLine{
		line(1, "EST-1002-1", "RPL", "Rear door shell", "67004-0K130", 655.00, 3.2, 3.5),
		line(2, "EST-1002-2", "R&I", "Rear door trim panel", "", 0, 0.5, 0),
		line(3, "EST-1002-3", "REF", "Rear quarter panel", "", 0, 0, 2.6),
	})
}

func line(seq int, id, op, desc, partNumber string, cost, labor, paint float64) models.EstimateLine {
	fields := map[string]any{
		models.FieldOperationCode: op,
		models.FieldDescription:   desc,
		models.FieldLaborHours:    labor,
		models.FieldPaintHours:    paint,
	}
	if partNumber != "" {
		fields[models.FieldPartNumber] = partNumber
		fields[models.FieldPartCost] = cost
		fields[models.FieldPartType] = "OEM"
	}
	return models.EstimateLine{ID: id, SequenceNumber: seq, Fields: fields}
}
