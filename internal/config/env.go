package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Env carries all process configuration. Loaded once at startup.
type Env struct {
	AppAddr string
	GinMode string
	DBDSN   string

	SecretKey     string
	PublicBaseURL string

	CompanyPrimary   Company
	CompanySecondary Company
	SystemTagline    string

	FontDirs          []string
	FallbackFonts     []string
	AutoDownloadCJK   bool
	LogoTargetHeight  float64
	LogoMaxWidth      float64
	AllowedTags       []string
	DateLocale        string
	TermsListStyle    string
	TermsIncludeVouch bool
	TableZebra        bool
	EnableQR          bool
	QRCacheTTL        time.Duration
	QRDir             string
	GeneratedDir      string
	GeneratedTTL      time.Duration
	UploadsDir        string

	RasterDPI  int
	RasterTool string
}

// Company is one corporate identity printed in document headers.
// The voucher documents use the secondary identity.
type Company struct {
	Name    string
	NameEN  string
	Address string
	Phone   string
	Mobile  string
	Email   string
	Website string
	LineOA  string
	License string
}

func LoadEnv() Env {
	_ = godotenv.Load()

	appAddr := getenv("APP_ADDR", ":8080")
	if !strings.HasPrefix(appAddr, ":") && !strings.Contains(appAddr, ":") {
		appAddr = ":" + appAddr
	}

	return Env{
		AppAddr: appAddr,
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN: getenv("DB_DSN",
			"root:@tcp(127.0.0.1:3306)/travel_backoffice?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"),

		SecretKey:     getenv("SECRET_KEY", "dev-secret-key-change-in-production"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://127.0.0.1:8080"),

		CompanyPrimary: Company{
			Name:    getenv("COMPANY_NAME", "บริษัท ดักุลจันทร์ ทราเวล เซอร์วิส (ประเทศไทย) จำกัด"),
			NameEN:  getenv("COMPANY_NAME_EN", "DHAKUL CHAN TRAVEL SERVICE (THAILAND) CO.,LTD."),
			Address: getenv("COMPANY_ADDRESS_EN", "710, 716, 704, 706 Prachautid Road, Samsennok, Huai Kwang, Bangkok 10310"),
			Phone:   getenv("COMPANY_PHONE", "+662 2744216"),
			Mobile:  getenv("COMPANY_MOBILE", "+662 2744216"),
			Email:   getenv("COMPANY_EMAIL", "support@dhakulchan.com"),
			Website: getenv("COMPANY_WEBSITE", "www.dhakulchan.net"),
			LineOA:  getenv("COMPANY_LINE_OA", "@dhakulchan"),
			License: getenv("PDF_LICENSE_VALUE", "11/03589"),
		},
		CompanySecondary: Company{
			Name:    getenv("COMPANY_NAME2", "DHAKUL CHAN NICE HOLIDAYS DISCOVERY GROUP COMPANY LIMITED."),
			NameEN:  getenv("COMPANY_NAME_EN2", "DHAKUL CHAN NICE HOLIDAYS DISCOVERY GROUP COMPANY LIMITED."),
			Address: getenv("COMPANY_ADDRESS_EN2", "Flat C13, 21/F, Mai Wah Industrial Bldg., No. 1-7 Wah Shing Street, Kwai Chung, NT. Hong Kong"),
			Phone:   getenv("COMPANY_PHONE2", "+852 2392 1155"),
			Mobile:  getenv("COMPANY_MOBILE2", "+852 23921177"),
			Email:   getenv("COMPANY_EMAIL2", "info@dhakulchan.net"),
			Website: getenv("COMPANY_WEBSITE2", "www.dhakulchan.net"),
		},
		SystemTagline: getenv("SYSTEM_TAGLINE", "Dhakul Chan Travel Back Office"),

		FontDirs:          splitList(getenv("FONT_DIRS", "static/fonts,fonts")),
		FallbackFonts:     splitList(getenv("PDF_FALLBACK_FONTS", "Thai,Latin")),
		AutoDownloadCJK:   getbool("PDF_AUTO_DOWNLOAD_CJK", false),
		LogoTargetHeight:  getfloat("PDF_LOGO_TARGET_HEIGHT", 55),
		LogoMaxWidth:      getfloat("PDF_LOGO_MAX_WIDTH", 180),
		AllowedTags:       splitList(getenv("PDF_ALLOWED_TAGS", "b,strong,i,em,u,br,p,ul,ol,li")),
		DateLocale:        getenv("PDF_DATE_LOCALE", "en"),
		TermsListStyle:    getenv("PDF_TERMS_LIST_STYLE", "number"),
		TermsIncludeVouch: getbool("PDF_TERMS_INCLUDE_VOUCHER", true),
		TableZebra:        getbool("PDF_TABLE_ZEBRA", true),
		EnableQR:          getbool("PDF_ENABLE_QR", true),
		QRCacheTTL:        time.Duration(getint("PDF_QR_CACHE_TTL", 86400)) * time.Second,
		QRDir:             getenv("QR_DIR", "static/qr_codes"),
		GeneratedDir:      getenv("GENERATED_DIR", "static/generated"),
		GeneratedTTL:      time.Duration(getint("GENERATED_TTL", 7*86400)) * time.Second,
		UploadsDir:        getenv("UPLOADS_DIR", "static/uploads/voucher_albums"),

		RasterDPI:  getint("RASTER_DPI", 150),
		RasterTool: getenv("RASTER_TOOL", "pdftoppm"),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func getint(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getfloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
