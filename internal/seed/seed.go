package seed

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type seedAssociation struct {
	name        string
	mission     string
	fullMission string
	category    string
	email       string
	phone       string
	website     string
	address     string
	siret       string
}

// Well-known French associations used to populate an empty directory.
var defaultAssociations = []seedAssociation{
	{
		name:        "Médecins Sans Frontières",
		mission:     "Aide médicale d'urgence aux populations en détresse",
		fullMission: "Médecins Sans Frontières est une organisation humanitaire internationale qui apporte une aide médicale d'urgence aux populations en détresse : victimes de conflits armés, d'épidémies, de catastrophes naturelles ou d'exclusion des soins.",
		category:    "health",
		email:       "contact@msf.fr",
		phone:       "01 40 21 29 29",
		website:     "www.msf.fr",
		address:     "8 rue Saint-Sabin, 75011 Paris",
		siret:       "78432158200034",
	},
	{
		name:        "Unicef France",
		mission:     "Protection et éducation des enfants dans le monde",
		fullMission: "L'UNICEF œuvre dans plus de 190 pays et territoires pour atteindre les enfants et les adolescents les plus défavorisés, ainsi que pour protéger les droits de tous les enfants, partout dans le monde.",
		category:    "education",
		email:       "contact@unicef.fr",
		phone:       "01 44 39 77 77",
		website:     "www.unicef.fr",
		address:     "3 rue Duguay-Trouin, 75006 Paris",
		siret:       "78432158200035",
	},
	{
		name:        "WWF France",
		mission:     "Conservation de la nature et protection de l'environnement",
		fullMission: "Le WWF est l'une des toutes premières organisations indépendantes de protection de l'environnement dans le monde. Nous agissons pour un monde où les humains vivent en harmonie avec la nature.",
		category:    "environment",
		email:       "contact@wwf.fr",
		phone:       "01 55 25 84 84",
		website:     "www.wwf.fr",
		address:     "35-37 rue Baudin, 93310 Le Pré-Saint-Gervais",
		siret:       "78432158200036",
	},
	{
		name:        "Secours Populaire Français",
		mission:     "Lutte contre la pauvreté et l'exclusion sociale",
		fullMission: "Le Secours populaire français agit contre la pauvreté et l'exclusion en France et dans le monde. L'association développe des actions d'urgence et d'insertion qui permettent de répondre aux besoins élémentaires des personnes en difficulté.",
		category:    "social",
		email:       "contact@secourspopulaire.fr",
		phone:       "01 44 78 21 00",
		website:     "www.secourspopulaire.fr",
		address:     "9-11 rue Froissart, 75003 Paris",
		siret:       "78432158200037",
	},
	{
		name:        "Les Restos du Cœur",
		mission:     "Aide alimentaire et insertion sociale",
		fullMission: "Les Restos du Cœur ont pour but d'aider et d'apporter une assistance bénévole aux personnes démunies, notamment dans le domaine alimentaire par l'accès à des repas gratuits, et par la participation à leur insertion sociale et économique.",
		category:    "social",
		email:       "contact@restosducoeur.org",
		phone:       "01 53 32 23 23",
		website:     "www.restosducoeur.org",
		address:     "35 rue de Trévise, 75009 Paris",
		siret:       "78432158200038",
	},
	{
		name:        "Fondation Abbé Pierre",
		mission:     "Lutte contre le mal-logement et l'exclusion",
		fullMission: "La Fondation Abbé Pierre agit pour que le droit au logement devienne une réalité pour tous. Elle lutte contre les causes du mal-logement et vient en aide aux personnes sans abri ou mal logées.",
		category:    "social",
		email:       "contact@fondation-abbe-pierre.fr",
		phone:       "01 55 56 37 00",
		website:     "www.fondation-abbe-pierre.fr",
		address:     "3 avenue du Père Lachaise, 75020 Paris",
		siret:       "78432158200039",
	},
}

// CreateDefaultData populates the association directory on first run. An
// already-seeded database is left untouched; seeded entries start verified
// but with zero counters, so every displayed total is backed by the ledger.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	var count int64
	if err := dbPool.QueryRow(ctx, `SELECT COUNT(*) FROM associations`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		lgr.Debug().Int64("associations", count).Msg("Directory already seeded, skipping")
		return nil
	}

	lgr.Info().Msg("Seeding association directory...")

	const insertSQL = `
		INSERT INTO associations (name, mission, full_mission, category, email, phone, website, address, siret, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
		ON CONFLICT (siret) DO NOTHING`

	for _, a := range defaultAssociations {
		if _, err := dbPool.Exec(ctx, insertSQL,
			a.name, a.mission, a.fullMission, a.category, a.email, a.phone, a.website, a.address, a.siret,
		); err != nil {
			lgr.Error().Err(err).Str("association", a.name).Msg("Error seeding association")
			return err
		}
	}

	lgr.Info().Int("count", len(defaultAssociations)).Msg("Association directory seeded")
	return nil
}
