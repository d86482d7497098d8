package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func contentType(label string) (models.ContentType, error) {
	ct, ok := models.ParseContentType(label)
	if !ok {
		return models.ContentType{}, ErrInvalidRow.Msg(fmt.Sprintf("invalid content type %q", label))
	}
	return ct, nil
}

func (s *Store) loadCustomFields(ctx context.Context, reg *extras.MemoryRegistry) error {
	query := `SELECT key, label, type, description, weight, choices, default_value, content_types FROM ` +
		s.table("extras_customfield") + ` ORDER BY weight, key`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return dbError(err, "failed to query custom fields")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cf           extras.CustomField
			typ          string
			description  sql.NullString
			choices      []string
			defaultValue []byte
			contentTypes []string
		)
		if err := rows.Scan(&cf.Key, &cf.Label, &typ, &description, &cf.Weight, pq.Array(&choices), &defaultValue, pq.Array(&contentTypes)); err != nil {
			return dbError(err, "failed to scan custom field")
		}
		cf.Type = extras.CustomFieldType(typ)
		cf.Description = description.String
		cf.Choices = choices
		if len(defaultValue) > 0 {
			if err := json.Unmarshal(defaultValue, &cf.Default); err != nil {
				return ErrInvalidRow.MsgErr(fmt.Sprintf("custom field %q default", cf.Key), err)
			}
		}
		for _, label := range contentTypes {
			ct, err := contentType(label)
			if err != nil {
				return err
			}
			cf.ContentTypes = append(cf.ContentTypes, ct)
		}
		if err := reg.AddCustomField(&cf); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return dbError(err, "failed to read custom fields")
	}
	return nil
}

func (s *Store) loadComputedFields(ctx context.Context, reg *extras.MemoryRegistry) error {
	query := `SELECT key, label, content_type, template, fallback_value, weight FROM ` +
		s.table("extras_computedfield") + ` ORDER BY weight, key`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return dbError(err, "failed to query computed fields")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cf       extras.ComputedField
			ctLabel  string
			fallback sql.NullString
		)
		if err := rows.Scan(&cf.Key, &cf.Label, &ctLabel, &cf.Template, &fallback, &cf.Weight); err != nil {
			return dbError(err, "failed to scan computed field")
		}
		ct, err := contentType(ctLabel)
		if err != nil {
			return err
		}
		cf.ContentType = ct
		cf.FallbackValue = fallback.String
		if err := reg.AddComputedField(&cf); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return dbError(err, "failed to read computed fields")
	}
	return nil
}

func (s *Store) loadRelationships(ctx context.Context, reg *extras.MemoryRegistry) error {
	query := `SELECT key, label, type, source_type, destination_type, source_label, destination_label FROM ` +
		s.table("extras_relationship") + ` ORDER BY key`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return dbError(err, "failed to query relationships")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rel                   extras.Relationship
			typ, srcType, dstType string
			srcLabel, dstLabel    sql.NullString
		)
		if err := rows.Scan(&rel.Key, &rel.Label, &typ, &srcType, &dstType, &srcLabel, &dstLabel); err != nil {
			return dbError(err, "failed to scan relationship")
		}
		rel.Type = extras.RelationshipType(typ)
		if rel.SourceType, err = contentType(srcType); err != nil {
			return err
		}
		if rel.DestinationType, err = contentType(dstType); err != nil {
			return err
		}
		rel.SourceLabel = srcLabel.String
		rel.DestinationLabel = dstLabel.String
		if err := reg.AddRelationship(&rel); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return dbError(err, "failed to read relationships")
	}
	return nil
}

func (s *Store) loadAssociations(ctx context.Context, reg *extras.MemoryRegistry) error {
	query := `SELECT id, relationship_key, source_type, source_id, destination_type, destination_id FROM ` +
		s.table("extras_relationshipassociation") + ` ORDER BY relationship_key, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return dbError(err, "failed to query relationship associations")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a                extras.Association
			srcType, dstType string
		)
		if err := rows.Scan(&a.ID, &a.Relationship, &srcType, &a.SourceID, &dstType, &a.DestinationID); err != nil {
			return dbError(err, "failed to scan relationship association")
		}
		if a.SourceType, err = contentType(srcType); err != nil {
			return err
		}
		if a.DestinationType, err = contentType(dstType); err != nil {
			return err
		}
		if a.ID == uuid.Nil {
			return ErrInvalidRow.Msg("relationship association without id")
		}
		if err := reg.AddAssociation(&a); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return dbError(err, "failed to read relationship associations")
	}
	return nil
}
