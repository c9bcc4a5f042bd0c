package generator

// referenceExample is embedded in the generation prompt so the service
// learns the expected format and level of specificity.
const referenceExample = `# Database Migration Safety

## When to Use
Use this skill whenever you are:
- Writing a new database migration file
- Modifying an existing migration
- Running migrations in a staging or production environment
- Reviewing a PR that contains migration files

Do NOT use this skill for:
- Seeding development data
- Modifying application-level ORM models without schema changes

## Steps

1. **Check if the migration is reversible**
   - Every migration MUST have a ` + "`down()`" + ` method or equivalent rollback
   - If data will be deleted, add a backup step first

2. **Verify the migration is non-breaking**
   - Adding a nullable column: safe
   - Renaming a column without a transition period: breaking
   - Dropping a column still referenced in code: breaking

3. **Test locally before staging**
   ` + "```bash" + `
   npm run migrate:up
   # run your test suite
   npm run migrate:down
   npm run migrate:up
   ` + "```" + `

4. **Add a migration lock check**
   - Confirm no other migration is running

5. **Document the migration**
   - Add a comment: what it does, why it was needed, estimated run time

## Example

**Bad migration (will cause downtime):**
` + "```sql" + `
ALTER TABLE users RENAME COLUMN email TO email_address;
` + "```" + `

**Good migration (zero-downtime rename):**
` + "```sql" + `
-- Step 1: Add new column
ALTER TABLE users ADD COLUMN email_address VARCHAR(255);
-- Step 2: Backfill
UPDATE users SET email_address = email WHERE email_address IS NULL;
` + "```" + `

## Expected Output
- A migration file that can be safely applied and rolled back
- Zero application downtime during deployment`
