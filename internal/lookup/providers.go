package lookup

import (
	"log/slog"
	"time"

	"github.com/edgard/codexbot/internal/config"
)

// Provider names, used in logs and Result.Source only.
const (
	ProviderAPIPeruDNI = "apiperu_dni"
	ProviderAPIsNetDNI = "apisnet_dni"
	ProviderAPIsNetRUC = "apisnet_ruc"
)

// NewPersonPrimaryProvider builds the apiperu.dev DNI provider:
// POST {"dni": "..."} answering {"data": {"nombre_completo": ...}}.
func NewPersonPrimaryProvider(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) (*HTTPProvider, error) {
	return NewHTTPProvider(HTTPProviderConfig{
		Name:        ProviderAPIPeruDNI,
		URL:         cfg.URL,
		Token:       cfg.Token,
		Shape:       ShapeJSONBody,
		Param:       "dni",
		PayloadPath: "data",
		Fields: map[FieldName]string{
			FieldFullName:         "nombre_completo",
			FieldGivenNames:       "nombres",
			FieldPaternalSurname:  "apellido_paterno",
			FieldMaternalSurname:  "apellido_materno",
			FieldVerificationCode: "codigo_verificacion",
		},
		Timeout:            timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, logger)
}

// NewPersonSecondaryProvider builds the apis.net.pe DNI provider:
// GET ?numero=... answering camelCase surname keys and no verification code.
func NewPersonSecondaryProvider(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) (*HTTPProvider, error) {
	return NewHTTPProvider(HTTPProviderConfig{
		Name:  ProviderAPIsNetDNI,
		URL:   cfg.URL,
		Token: cfg.Token,
		Shape: ShapeQueryParam,
		Param: "numero",
		Fields: map[FieldName]string{
			FieldFullName:        "nombre",
			FieldGivenNames:      "nombres",
			FieldPaternalSurname: "apellidoPaterno",
			FieldMaternalSurname: "apellidoMaterno",
		},
		Timeout:            timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, logger)
}

// NewEntityProvider builds the apis.net.pe RUC provider: GET ?numero=...
func NewEntityProvider(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) (*HTTPProvider, error) {
	return NewHTTPProvider(HTTPProviderConfig{
		Name:  ProviderAPIsNetRUC,
		URL:   cfg.URL,
		Token: cfg.Token,
		Shape: ShapeQueryParam,
		Param: "numero",
		Fields: map[FieldName]string{
			FieldFullName:   "nombre",
			FieldStatus:     "estado",
			FieldCondition:  "condicion",
			FieldAddress:    "direccion",
			FieldStreet:     "viaNombre",
			FieldDistrict:   "distrito",
			FieldProvince:   "provincia",
			FieldDepartment: "departamento",
			FieldUbigeo:     "ubigeo",
		},
		Timeout:            timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, logger)
}

// NewResolverFromConfig wires the configured providers into a Resolver:
// DNI tries the primary provider then the secondary one, RUC has a single provider.
func NewResolverFromConfig(cfg config.LookupConfig, logger *slog.Logger) (*Resolver, error) {
	primary, err := NewPersonPrimaryProvider(cfg.PersonPrimary, cfg.Timeout, logger)
	if err != nil {
		return nil, err
	}
	secondary, err := NewPersonSecondaryProvider(cfg.PersonSecondary, cfg.Timeout, logger)
	if err != nil {
		return nil, err
	}
	entity, err := NewEntityProvider(cfg.Entity, cfg.Timeout, logger)
	if err != nil {
		return nil, err
	}

	return NewResolver(logger, ResolverConfig{
		Timeout:     cfg.Timeout,
		MaxInFlight: cfg.MaxInFlight,
	}, map[Kind][]Provider{
		KindPersonID: {primary, secondary},
		KindEntityID: {entity},
	}), nil
}
