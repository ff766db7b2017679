package dberr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/deppfellow/formapplication/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IsDriverError reports whether err came from one of the storage drivers
// (pgx, mongo) or is a storage deadline, i.e. something HandleError knows
// how to classify.
func IsDriverError(err error) bool {
	var dbErr *Error
	var pgErr *pgconn.PgError
	var connectErr *pgconn.ConnectError
	switch {
	case errors.As(err, &dbErr), errors.As(err, &pgErr), errors.As(err, &connectErr):
		return true
	case pgconn.Timeout(err), errors.Is(err, context.DeadlineExceeded), errors.Is(err, pgx.ErrNoRows):
		return true
	}
	return isMongoError(err)
}

func isMongoError(err error) bool {
	var serverErr mongo.ServerError
	return errors.As(err, &serverErr) ||
		errors.Is(err, mongo.ErrNoDocuments) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		mongo.IsDuplicateKeyError(err)
}

// ConvertPgError normalizes a PostgreSQL server error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// ConvertMongoError normalizes a MongoDB driver error. collection is used
// as the table name since MongoDB errors do not carry one.
func ConvertMongoError(src error, collection string) *Error {
	dbErr := &Error{
		Code:      Other,
		Severity:  SeverityError,
		Message:   src.Error(),
		TableName: collection,
		driverErr: src,
	}

	var serverErr mongo.ServerError
	if errors.As(src, &serverErr) {
		if codes := mongoCodes(serverErr); len(codes) > 0 {
			dbErr.DatabaseCode = strconv.Itoa(codes[0])
		}
	}

	switch {
	case mongo.IsDuplicateKeyError(src):
		dbErr.Code = UniqueViolation
	case mongo.IsTimeout(src):
		dbErr.Code = Timeout
	case mongo.IsNetworkError(src), errors.Is(src, mongo.ErrClientDisconnected):
		dbErr.Code = Unavailable
	}

	return dbErr
}

func mongoCodes(err mongo.ServerError) []int {
	var codes []int
	switch e := err.(type) {
	case mongo.CommandError:
		codes = append(codes, int(e.Code))
	case mongo.WriteException:
		for _, we := range e.WriteErrors {
			codes = append(codes, we.Code)
		}
	case mongo.BulkWriteException:
		for _, we := range e.WriteErrors {
			codes = append(codes, we.Code)
		}
	}
	return codes
}

// generateErrorCode builds a machine-friendly "<DOMAIN>_<ACTION>" code,
// e.g. FORMV1_ALREADY_EXISTS for a unique violation on formv1.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(dbErr *Error) string {
	entityName := getEntityName(dbErr.TableName, dbErr.ColumnName)

	switch dbErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)
	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entityName)
	case NotNullViolation:
		fieldName := humanizeText(dbErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)
	case CheckViolation:
		if fieldName := humanizeText(dbErr.ColumnName); fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"
	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers a "<x>_id" column, then the table name.
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText turns "customer_id" into "Customer Id".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a storage error into an *errs.HTTPError.
//
//   - an *errs.HTTPError is returned unchanged
//   - constraint violations become 400s with a generated code
//   - unreachable stores and timeouts become 503s
//   - "no rows" / "no documents" become 404s
//   - anything else, including errors no driver produced, becomes a
//     generic 500
//
// collection names the table or collection the failing call touched and is
// only used when the driver error does not name one itself.
func HandleError(err error, collection string) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments) {
		return errs.NewNotFoundError(fmt.Sprintf("%s not found", getEntityName(collection, "")), true, nil)
	}

	var dbErr *Error
	var pgErr *pgconn.PgError
	var connectErr *pgconn.ConnectError
	switch {
	case errors.As(err, &dbErr):
	case errors.As(err, &pgErr):
		dbErr = ConvertPgError(pgErr)
		if dbErr.TableName == "" {
			dbErr.TableName = collection
		}
	case errors.As(err, &connectErr), pgconn.Timeout(err), errors.Is(err, context.DeadlineExceeded):
		return errs.NewServiceUnavailableError()
	case isMongoError(err):
		dbErr = ConvertMongoError(err, collection)
	default:
		return errs.NewInternalServerError()
	}

	errorCode := generateErrorCode(dbErr.TableName, dbErr.Code)
	userMessage := formatUserFriendlyMessage(dbErr)

	switch dbErr.Code {
	case UniqueViolation:
		return errs.NewBadRequestError(userMessage, true, &errorCode, nil)
	case ForeignKeyViolation:
		return errs.NewBadRequestError(userMessage, false, &errorCode, nil)
	case NotNullViolation:
		fieldErrors := []errs.FieldError{{
			Field: strings.ToLower(dbErr.ColumnName),
			Error: "is required",
		}}
		return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors)
	case CheckViolation:
		return errs.NewBadRequestError(userMessage, true, &errorCode, nil)
	case Unavailable, Timeout:
		return errs.NewServiceUnavailableError()
	default:
		return errs.NewInternalServerError()
	}
}
