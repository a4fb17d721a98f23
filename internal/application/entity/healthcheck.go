package entity

const (
	CheckTypePostgres      = "postgresql"
	CheckTypeKafka         = "kafka"
	CheckTypeKafkaDisabled = "disabled"

	healthOK       = "success"
	healthDegraded = "Some services are unavailable"
)

// HealthCheckResponse ответ /health
type HealthCheckResponse struct {
	Status  bool                    `json:"status" example:"true"`
	Message string                  `json:"message" example:"success"`
	Version string                  `json:"version" example:"dev"`
	Checks  HealthCheckResponseData `json:"checks"`
}

type HealthCheckResponseData struct {
	Database HealthCheckItem `json:"database"`
	Kafka    HealthCheckItem `json:"kafka"`
}

// HealthCheckItem состояние одной зависимости. Type = "disabled" для выключенной Kafka.
type HealthCheckItem struct {
	Status bool   `json:"status" example:"true"`
	Type   string `json:"type" example:"postgresql"`
	Error  string `json:"error,omitempty" example:"Database connection failed"`
}

// NewHealthCheckResponse собирает ответ по результатам проверок.
// Выключенная Kafka считается доступной.
func NewHealthCheckResponse(version string, dbHealthy, kafkaHealthy, kafkaEnabled bool) HealthCheckResponse {
	kafka := HealthCheckItem{Status: kafkaHealthy, Type: CheckTypeKafka}
	if !kafkaEnabled {
		kafka = HealthCheckItem{Status: true, Type: CheckTypeKafkaDisabled}
	}

	resp := HealthCheckResponse{
		Message: healthOK,
		Version: version,
		Checks: HealthCheckResponseData{
			Database: HealthCheckItem{Status: dbHealthy, Type: CheckTypePostgres},
			Kafka:    kafka,
		},
	}
	if !resp.Checks.Database.Status {
		resp.Checks.Database.Error = "Database connection failed"
	}
	if !resp.Checks.Kafka.Status {
		resp.Checks.Kafka.Error = "Kafka connection failed"
	}

	resp.Status = resp.Checks.Database.Status && resp.Checks.Kafka.Status
	if !resp.Status {
		resp.Message = healthDegraded
	}
	return resp
}
