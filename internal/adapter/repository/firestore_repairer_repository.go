package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

const repairersCollection = "repairers"

type firestoreRepairerRepository struct {
	client *firestore.Client
}

func NewFirestoreRepairerRepository(client *firestore.Client) repository.RepairerRepository {
	return &firestoreRepairerRepository{
		client: client,
	}
}

func (r *firestoreRepairerRepository) Create(ctx context.Context, repairer *entity.Repairer) error {
	if repairer.ID == "" {
		repairer.ID = uuid.New().String()
	}
	if repairer.Issues == nil {
		repairer.Issues = []string{}
	}
	if repairer.Expertise == nil {
		repairer.Expertise = []string{}
	}
	now := time.Now().UTC()
	repairer.CreatedAt = now
	repairer.UpdatedAt = now

	repairers := r.client.Collection(repairersCollection)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(repairers.Where("email", "==", repairer.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			return errors.Conflict("Repairer already exists")
		}
		return tx.Create(repairers.Doc(repairer.ID), repairer)
	})
	if err != nil {
		if errors.Is(err, errors.CodeConflict) {
			return err
		}
		return errors.Internal("Failed to create repairer", err)
	}
	return nil
}

func (r *firestoreRepairerRepository) GetByID(ctx context.Context, id string) (*entity.Repairer, error) {
	doc, err := r.client.Collection(repairersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Repairer", err)
		}
		return nil, errors.Internal("Failed to get repairer", err)
	}
	return decodeRepairer(doc)
}

func (r *firestoreRepairerRepository) GetByEmail(ctx context.Context, email string) (*entity.Repairer, error) {
	iter := r.client.Collection(repairersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Repairer", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query repairer by email", err)
	}
	return decodeRepairer(doc)
}

// AddClaimedIssue uses ArrayUnion, which has set semantics server-side.
func (r *firestoreRepairerRepository) AddClaimedIssue(ctx context.Context, repairerID, issueID string) error {
	_, err := r.client.Collection(repairersCollection).Doc(repairerID).Update(ctx, []firestore.Update{
		{Path: "issues", Value: firestore.ArrayUnion(issueID)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Repairer", err)
		}
		return errors.Internal("Failed to update claimed issues", err)
	}
	return nil
}

func (r *firestoreRepairerRepository) ListWithLocation(ctx context.Context) ([]*entity.Repairer, error) {
	iter := r.client.Collection(repairersCollection).Documents(ctx)
	defer iter.Stop()

	out := make([]*entity.Repairer, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate repairers", err)
		}
		repairer, err := decodeRepairer(doc)
		if err != nil {
			return nil, err
		}
		if repairer.Location.Geo != nil {
			out = append(out, repairer)
		}
	}
	return out, nil
}

func decodeRepairer(doc *firestore.DocumentSnapshot) (*entity.Repairer, error) {
	var repairer entity.Repairer
	if err := doc.DataTo(&repairer); err != nil {
		return nil, errors.Internal("Failed to parse repairer data", err)
	}
	repairer.ID = doc.Ref.ID
	return &repairer, nil
}
