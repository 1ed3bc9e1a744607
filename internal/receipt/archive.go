package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "receipts"

var ErrReceiptNotFound = errors.New("receipt not found")

// Record is an archived receipt. Amounts are stored as fixed two-place strings.
type Record struct {
	InvoiceNumber string    `bson:"invoice_number" json:"invoice_number"`
	InvoiceID     string    `bson:"invoice_id" json:"invoice_id"`
	ShiftID       string    `bson:"shift_id,omitempty" json:"shift_id,omitempty"`
	PaymentMethod string    `bson:"payment_method" json:"payment_method"`
	TotalAmount   string    `bson:"total_amount" json:"total_amount"`
	Text          string    `bson:"text" json:"text"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	ArchivedAt    time.Time `bson:"archived_at" json:"archived_at"`
}

// Archive keeps every printed receipt for reprints. It is a Sink.
type Archive struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewArchive(db *mongo.Database) *Archive {
	return &Archive{
		collection: db.Collection(collectionName),
		now:        time.Now,
	}
}

func (a *Archive) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "invoice_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "shift_id", Value: 1}, {Key: "created_at", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Print upserts the receipt keyed by invoice number, so a reprint never
// produces a second record.
func (a *Archive) Print(ctx context.Context, inv *domain.Invoice, doc []byte) error {
	rec := Record{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceID:     inv.ID,
		PaymentMethod: inv.PaymentMethod.String(),
		TotalAmount:   amount(inv.TotalAmount),
		Text:          string(doc),
		CreatedAt:     inv.CreatedAt.UTC(),
		ArchivedAt:    a.now().UTC(),
	}
	if inv.ShiftID != nil {
		rec.ShiftID = *inv.ShiftID
	}

	filter := bson.M{"invoice_number": rec.InvoiceNumber}
	update := bson.M{"$set": rec}
	opts := options.Update().SetUpsert(true)

	if _, err := a.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to archive receipt %s: %w", rec.InvoiceNumber, err)
	}
	return nil
}

func (a *Archive) Get(ctx context.Context, invoiceNumber string) (*Record, error) {
	var rec Record
	err := a.collection.FindOne(ctx, bson.M{"invoice_number": invoiceNumber}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return &rec, nil
}

// ListByShift returns a shift's receipts oldest first
func (a *Archive) ListByShift(ctx context.Context, shiftID string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := a.collection.Find(ctx, bson.M{"shift_id": shiftID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode receipts: %w", err)
	}
	return records, nil
}
