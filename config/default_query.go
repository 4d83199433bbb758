package config

// DefaultQuery is shown in the editor when the IDE opens.
const DefaultQuery = `# shift-option/alt-click on a query below to jump to it in the explorer
# option/alt-click on a field in the explorer to select all subfields
query allItems {
  allItems {
    name
    id
    description
    displayName
    fullDisplayName
    url
    ... on hudson_model_Job {
      allBuilds {
        id
        building
        duration
        number
        result
        timestamp
      }
    }
  }
  allUsers {
    absoluteUrl
    fullName
    id
  }
  whoAmI {
    anonymous
    authenticated
    name
  }
}`
