package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Tất cả đọc từ environment variables (file config/env/<GO_ENV>.env).
type Configuration struct {
	InitMode              bool   `env:"INITMODE" envDefault:"false"`               // Chế độ khởi tạo (seed dữ liệu mặc định)
	Address               string `env:"ADDRESS" envDefault:":8080"`                // Địa chỉ server
	JwtSecret             string `env:"JWT_SECRET,required"`                       // Bí mật ký JWT
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối MongoDB
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên database chính
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Khóa mã hóa cấu hình plugin (AES-256-GCM, 32 bytes dạng hex 64 ký tự).
	// Cấu hình plugin chứa secret (API key, webhook URL nội bộ) nên phải mã hóa at rest.
	PluginConfigKey string `env:"PLUGIN_CONFIG_KEY,required"`

	// Timeout mặc định khi gọi plugin bên ngoài (giây)
	PluginCallTimeout int `env:"PLUGIN_CALL_TIMEOUT" envDefault:"30"`

	// Tài khoản admin seed khi INITMODE (bỏ trống thì bỏ qua bước tạo admin)
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// Worker tuning
	CostRecomputeMinutes  int `env:"COST_RECOMPUTE_MINUTES" envDefault:"15"` // Chu kỳ tính lại chi phí
	SignalReattachMinutes int `env:"SIGNAL_REATTACH_MINUTES" envDefault:"5"` // Chu kỳ retry gắn case cho signal instance
	ReminderSweepMinutes  int `env:"REMINDER_SWEEP_MINUTES" envDefault:"15"` // Chu kỳ quét reminder
	WorkerBatchSize       int `env:"WORKER_BATCH_SIZE" envDefault:"50"`      // Số bản ghi tối đa mỗi lần worker xử lý

	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn file certificate
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn file private key
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	environment := os.Getenv("GO_ENV")
	if environment == "" {
		environment = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Dùng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Đi lên từ thư mục hiện tại cho tới khi thấy config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", environment))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env và environment variables
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// File env không bắt buộc khi chạy trong container (env đã set sẵn)
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
