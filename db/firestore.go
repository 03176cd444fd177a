package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"workforce/models"
)

// Collection names
const (
	colUsers        = "users"
	colPasswords    = "passwords"
	colAvailability = "availability"
	colShifts       = "shifts"
	colAuditLogs    = "rosterAuditLogs"
	colTimeRecords  = "timeRecords"
)

// ErrUserNotFound is returned by username lookups when no user matches.
var ErrUserNotFound = errors.New("user not found")

// FirestoreDB wraps the Firestore client
type FirestoreDB struct {
	client *firestore.Client
}

// NewFirestoreDB initializes a new Firestore client
func NewFirestoreDB(ctx context.Context, projectID, credentialsPath string) (*FirestoreDB, error) {
	opt := option.WithCredentialsFile(credentialsPath)

	config := &firebase.Config{ProjectID: projectID}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}

	logrus.WithField("project", projectID).Info("Connected to Firestore")

	return &FirestoreDB{client: client}, nil
}

// Close closes the Firestore client
func (db *FirestoreDB) Close() error {
	return db.client.Close()
}

// RunTransaction executes f inside a Firestore transaction. The roster
// workflow and clock-in guard depend on this for read-validate-write
// isolation.
func (db *FirestoreDB) RunTransaction(ctx context.Context, f func(ctx context.Context, tx *firestore.Transaction) error) error {
	return db.client.RunTransaction(ctx, f)
}

// Shifts returns the shifts collection for transactional access.
func (db *FirestoreDB) Shifts() *firestore.CollectionRef {
	return db.client.Collection(colShifts)
}

// AuditLogs returns the roster audit log collection for transactional access.
func (db *FirestoreDB) AuditLogs() *firestore.CollectionRef {
	return db.client.Collection(colAuditLogs)
}

// TimeRecords returns the time record collection for transactional access.
func (db *FirestoreDB) TimeRecords() *firestore.CollectionRef {
	return db.client.Collection(colTimeRecords)
}

// AvailabilityDoc returns the availability document ref for the composite
// key (staffID, weekStart, dayOfWeek). The deterministic ID is what makes
// "at most one submission per day per week" a structural guarantee.
func (db *FirestoreDB) AvailabilityDoc(staffID string, weekStart time.Time, dayOfWeek int) *firestore.DocumentRef {
	return db.client.Collection(colAvailability).Doc(AvailabilityDocID(staffID, weekStart, dayOfWeek))
}

// AvailabilityDocID derives the composite availability document ID.
func AvailabilityDocID(staffID string, weekStart time.Time, dayOfWeek int) string {
	return fmt.Sprintf("%s_%s_%d", staffID, weekStart.Format("2006-01-02"), dayOfWeek)
}

// --- User Operations ---

// CreateUser creates a new user document keyed by its user ID.
func (db *FirestoreDB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := db.client.Collection(colUsers).Doc(user.UserID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (db *FirestoreDB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := db.client.Collection(colUsers).Doc(userID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (db *FirestoreDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	iter := db.client.Collection(colUsers).
		Where("username", "==", username).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}

	return &user, nil
}

// GetAllUsers retrieves all users
func (db *FirestoreDB) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return db.queryUsers(db.client.Collection(colUsers).Documents(ctx))
}

// GetUsersByRole retrieves all users with the given role.
func (db *FirestoreDB) GetUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return db.queryUsers(db.client.Collection(colUsers).
		Where("role", "==", string(role)).
		Documents(ctx))
}

func (db *FirestoreDB) queryUsers(iter *firestore.DocumentIterator) ([]models.User, error) {
	defer iter.Stop()

	var users []models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			logrus.WithField("doc", doc.Ref.ID).WithError(err).Warn("failed to parse user")
			continue
		}
		users = append(users, user)
	}

	return users, nil
}

// UpdateUser overwrites an existing user document.
func (db *FirestoreDB) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := db.client.Collection(colUsers).Doc(user.UserID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser deletes a user document.
func (db *FirestoreDB) DeleteUser(ctx context.Context, userID string) error {
	_, err := db.client.Collection(colUsers).Doc(userID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// --- Password Operations ---

// StorePasswordHash stores a password hash for a user
func (db *FirestoreDB) StorePasswordHash(ctx context.Context, userID, passwordHash string) error {
	_, err := db.client.Collection(colPasswords).Doc(userID).Set(ctx, map[string]interface{}{
		"user_id":       userID,
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to store password hash: %w", err)
	}
	return nil
}

// GetPasswordHash retrieves a password hash for a user
func (db *FirestoreDB) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	doc, err := db.client.Collection(colPasswords).Doc(userID).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}

	data := doc.Data()
	if hash, ok := data["password_hash"].(string); ok {
		return hash, nil
	}

	return "", fmt.Errorf("password hash not found for user: %s", userID)
}

// DeletePasswordHash removes a user's stored credential.
func (db *FirestoreDB) DeletePasswordHash(ctx context.Context, userID string) error {
	_, err := db.client.Collection(colPasswords).Doc(userID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete password hash: %w", err)
	}
	return nil
}

// --- Availability Operations ---

// SetAvailability upserts an availability document at its composite key.
func (db *FirestoreDB) SetAvailability(ctx context.Context, avail *models.Availability) error {
	ref := db.AvailabilityDoc(avail.StaffID, avail.WeekStartDate, avail.DayOfWeek)
	_, err := ref.Set(ctx, avail)
	if err != nil {
		return fmt.Errorf("failed to set availability: %w", err)
	}
	return nil
}

// DeleteAvailability removes the availability document for the composite
// key. Deleting a document that does not exist is not an error: the
// submission batch issues deletes for every empty day.
func (db *FirestoreDB) DeleteAvailability(ctx context.Context, staffID string, weekStart time.Time, dayOfWeek int) error {
	_, err := db.AvailabilityDoc(staffID, weekStart, dayOfWeek).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	return nil
}

// GetAvailabilityForWeek retrieves one staff member's availability
// documents for a week.
func (db *FirestoreDB) GetAvailabilityForWeek(ctx context.Context, staffID string, weekStart time.Time) ([]models.Availability, error) {
	iter := db.client.Collection(colAvailability).
		Where("staff_id", "==", staffID).
		Where("week_start_date", "==", weekStart).
		Documents(ctx)
	return db.queryAvailability(iter)
}

// GetSubmittedAvailability retrieves every SUBMITTED availability document
// for a week and day of week, across all staff. This is the admin's
// approval view.
func (db *FirestoreDB) GetSubmittedAvailability(ctx context.Context, weekStart time.Time, dayOfWeek int) ([]models.Availability, error) {
	iter := db.client.Collection(colAvailability).
		Where("week_start_date", "==", weekStart).
		Where("day_of_week", "==", dayOfWeek).
		Where("status", "==", string(models.AvailabilitySubmitted)).
		Documents(ctx)
	return db.queryAvailability(iter)
}

func (db *FirestoreDB) queryAvailability(iter *firestore.DocumentIterator) ([]models.Availability, error) {
	defer iter.Stop()

	var items []models.Availability
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate availability: %w", err)
		}

		var avail models.Availability
		if err := doc.DataTo(&avail); err != nil {
			logrus.WithField("doc", doc.Ref.ID).WithError(err).Warn("failed to parse availability")
			continue
		}
		avail.ID = doc.Ref.ID
		items = append(items, avail)
	}

	return items, nil
}

// --- Shift Operations ---

// ShiftsForDateQuery builds the approved-shifts query for a single
// calendar day. Exposed as a query so the roster workflow can run it
// inside a transaction and the watch endpoint can subscribe to it.
func (db *FirestoreDB) ShiftsForDateQuery(date time.Time) firestore.Query {
	nextDay := date.AddDate(0, 0, 1)
	return db.client.Collection(colShifts).
		Where("date", ">=", date).
		Where("date", "<", nextDay).
		Where("status", "==", string(models.ShiftApproved))
}

// GetShiftsForDate retrieves all approved shifts on a calendar day.
func (db *FirestoreDB) GetShiftsForDate(ctx context.Context, date time.Time) ([]models.Shift, error) {
	return db.queryShifts(db.ShiftsForDateQuery(date).Documents(ctx))
}

// GetShiftsForWeek retrieves one staff member's approved shifts within the
// week starting at weekStart.
func (db *FirestoreDB) GetShiftsForWeek(ctx context.Context, staffID string, weekStart time.Time) ([]models.Shift, error) {
	weekEnd := weekStart.AddDate(0, 0, 7)
	iter := db.client.Collection(colShifts).
		Where("staff_id", "==", staffID).
		Where("date", ">=", weekStart).
		Where("date", "<", weekEnd).
		Where("status", "==", string(models.ShiftApproved)).
		Documents(ctx)
	return db.queryShifts(iter)
}

// GetAllShiftsForWeek retrieves every approved shift within the week
// starting at weekStart, for all staff.
func (db *FirestoreDB) GetAllShiftsForWeek(ctx context.Context, weekStart time.Time) ([]models.Shift, error) {
	weekEnd := weekStart.AddDate(0, 0, 7)
	iter := db.client.Collection(colShifts).
		Where("date", ">=", weekStart).
		Where("date", "<", weekEnd).
		Where("status", "==", string(models.ShiftApproved)).
		Documents(ctx)
	return db.queryShifts(iter)
}

func (db *FirestoreDB) queryShifts(iter *firestore.DocumentIterator) ([]models.Shift, error) {
	defer iter.Stop()

	var shifts []models.Shift
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate shifts: %w", err)
		}

		var shift models.Shift
		if err := doc.DataTo(&shift); err != nil {
			logrus.WithField("doc", doc.Ref.ID).WithError(err).Warn("failed to parse shift")
			continue
		}
		shift.ID = doc.Ref.ID
		shifts = append(shifts, shift)
	}

	return shifts, nil
}

// WatchShiftsForDate subscribes to the approved shifts on a calendar day
// and sends a full snapshot on every change. The subscription ends and the
// channel closes when ctx is cancelled.
func (db *FirestoreDB) WatchShiftsForDate(ctx context.Context, date time.Time) <-chan []models.Shift {
	out := make(chan []models.Shift)

	go func() {
		defer close(out)

		snapIter := db.ShiftsForDateQuery(date).Snapshots(ctx)
		defer snapIter.Stop()

		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logrus.WithError(err).Warn("shift watch terminated")
				}
				return
			}

			shifts, err := db.queryShiftsSnapshot(snap)
			if err != nil {
				logrus.WithError(err).Warn("failed to read shift snapshot")
				continue
			}

			select {
			case out <- shifts:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (db *FirestoreDB) queryShiftsSnapshot(snap *firestore.QuerySnapshot) ([]models.Shift, error) {
	shifts := []models.Shift{}
	for {
		doc, err := snap.Documents.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate snapshot: %w", err)
		}

		var shift models.Shift
		if err := doc.DataTo(&shift); err != nil {
			logrus.WithField("doc", doc.Ref.ID).WithError(err).Warn("failed to parse shift")
			continue
		}
		shift.ID = doc.Ref.ID
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

// --- Audit Log Operations ---

// GetAuditLogs retrieves roster audit entries, optionally filtered by
// staff or shift, newest first.
func (db *FirestoreDB) GetAuditLogs(ctx context.Context, staffID, shiftID string) ([]models.RosterAuditLog, error) {
	query := db.client.Collection(colAuditLogs).Query
	if staffID != "" {
		query = query.Where("staff_id", "==", staffID)
	}
	if shiftID != "" {
		query = query.Where("shift_id", "==", shiftID)
	}
	iter := query.OrderBy("timestamp", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var logs []models.RosterAuditLog
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
		}

		var entry models.RosterAuditLog
		if err := doc.DataTo(&entry); err != nil {
			logrus.WithField("doc", doc.Ref.ID).WithError(err).Warn("failed to parse audit log")
			continue
		}
		entry.ID = doc.Ref.ID
		logs = append(logs, entry)
	}

	return logs, nil
}

// --- Time Record Operations ---

// OpenTimeRecordQuery matches the staff member's currently open clock
// session, if any. Used both directly and inside the clock-in transaction.
func (db *FirestoreDB) OpenTimeRecordQuery(staffID string) firestore.Query {
	return db.client.Collection(colTimeRecords).
		Where("staff_id", "==", staffID).
		Where("clock_out_time", "==", nil).
		Limit(1)
}

// GetOpenTimeRecord retrieves the staff member's open clock session, or
// nil if they are clocked out.
func (db *FirestoreDB) GetOpenTimeRecord(ctx context.Context, staffID string) (*models.TimeRecord, error) {
	iter := db.OpenTimeRecordQuery(staffID).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query time records: %w", err)
	}

	var record models.TimeRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to parse time record: %w", err)
	}
	record.ID = doc.Ref.ID

	return &record, nil
}
